package db

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS counterparties (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    contact TEXT NOT NULL,
    credit_score REAL NOT NULL,
    past_purchases INTEGER NOT NULL DEFAULT 0,
    categories TEXT NOT NULL DEFAULT '',
    registered_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS feedback_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    product_id TEXT NOT NULL,
    identity TEXT NOT NULL,
    strategy TEXT NOT NULL,
    confidence REAL NOT NULL,
    fallback INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    market_context TEXT NOT NULL,
    scenarios TEXT NOT NULL,
    decision TEXT NOT NULL,
    execution TEXT NOT NULL,
    recorded_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_feedback_identity ON feedback_records(identity);
CREATE INDEX IF NOT EXISTS idx_feedback_strategy ON feedback_records(strategy);
`
