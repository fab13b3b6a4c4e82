// Package feedback is the append-only decision log. Records are immutable
// once written; readers always get decoded copies, never references into
// store state.
package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trustflow/internal/execution"
	"trustflow/internal/strategy"
)

// Record is one pipeline run's inputs, decision and outcome.
type Record struct {
	ID         int64
	RunID      string
	ProductID  string
	Identity   string
	Strategy   string
	Confidence float64
	Fallback   bool
	Status     string
	Context    strategy.MarketContext
	Scenarios  map[string]strategy.ProfitScenario
	Decision   strategy.Decision
	Execution  execution.Result
	RecordedAt time.Time
}

// Analytics summarizes an identity's recorded runs, computed by full scan
// on demand.
type Analytics struct {
	TotalDecisions int            `json:"total_decisions"`
	ByStrategy     map[string]int `json:"by_strategy"`
	SuccessRate    float64        `json:"success_rate"`
	AvgConfidence  float64        `json:"avg_confidence"`
}

// Store appends and serves feedback records over sqlite.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes a record with the next sequential id and returns that id.
// Records are never edited or removed afterward.
func (s *Store) Append(ctx context.Context, r Record) (int64, error) {
	mc, err := json.Marshal(r.Context)
	if err != nil {
		return 0, fmt.Errorf("encoding market context: %w", err)
	}
	scen, err := json.Marshal(r.Scenarios)
	if err != nil {
		return 0, fmt.Errorf("encoding scenarios: %w", err)
	}
	dec, err := json.Marshal(r.Decision)
	if err != nil {
		return 0, fmt.Errorf("encoding decision: %w", err)
	}
	exec, err := json.Marshal(r.Execution)
	if err != nil {
		return 0, fmt.Errorf("encoding execution result: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback_records (run_id, product_id, identity, strategy, confidence, fallback, status, market_context, scenarios, decision, execution)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.ProductID, r.Identity, r.Strategy, r.Confidence, boolToInt(r.Fallback), r.Status, mc, scen, dec, exec,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting feedback record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading feedback record id: %w", err)
	}
	return id, nil
}

// Count returns the total number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting feedback records: %w", err)
	}
	return n, nil
}

// QueryByIdentity returns all records for an identity, matched
// case-insensitively, oldest first.
func (s *Store) QueryByIdentity(ctx context.Context, identity string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, product_id, identity, strategy, confidence, fallback, status, market_context, scenarios, decision, execution, recorded_at
		FROM feedback_records
		WHERE LOWER(identity) = LOWER(?)
		ORDER BY id`, identity)
	if err != nil {
		return nil, fmt.Errorf("querying feedback records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var fallback int
		var mc, scen, dec, exec []byte
		var recordedAt string
		if err := rows.Scan(&r.ID, &r.RunID, &r.ProductID, &r.Identity, &r.Strategy, &r.Confidence, &fallback, &r.Status, &mc, &scen, &dec, &exec, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback record: %w", err)
		}
		r.Fallback = fallback != 0
		if err := json.Unmarshal(mc, &r.Context); err != nil {
			return nil, fmt.Errorf("decoding market context: %w", err)
		}
		if err := json.Unmarshal(scen, &r.Scenarios); err != nil {
			return nil, fmt.Errorf("decoding scenarios: %w", err)
		}
		if err := json.Unmarshal(dec, &r.Decision); err != nil {
			return nil, fmt.Errorf("decoding decision: %w", err)
		}
		if err := json.Unmarshal(exec, &r.Execution); err != nil {
			return nil, fmt.Errorf("decoding execution result: %w", err)
		}
		if t, err := time.Parse("2006-01-02 15:04:05", recordedAt); err == nil {
			r.RecordedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AnalyticsFor aggregates an identity's records: per-strategy counts,
// success rate and average confidence.
func (s *Store) AnalyticsFor(ctx context.Context, identity string) (Analytics, error) {
	a := Analytics{ByStrategy: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy, COUNT(*)
		FROM feedback_records
		WHERE LOWER(identity) = LOWER(?)
		GROUP BY strategy`, identity)
	if err != nil {
		return a, fmt.Errorf("aggregating strategies: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return a, fmt.Errorf("scanning strategy count: %w", err)
		}
		a.ByStrategy[name] = count
		a.TotalDecisions += count
	}
	if err := rows.Err(); err != nil {
		return a, err
	}
	if a.TotalDecisions == 0 {
		return a, nil
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(confidence), 0)
		FROM feedback_records
		WHERE LOWER(identity) = LOWER(?)`, identity)
	var successes int
	if err := row.Scan(&successes, &a.AvgConfidence); err != nil {
		return a, fmt.Errorf("aggregating outcomes: %w", err)
	}
	a.SuccessRate = float64(successes) / float64(a.TotalDecisions)
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
