package db

import (
	"testing"
)

func TestMigrate_CreatesAllTables(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := Migrate(database); err != nil {
		t.Fatal(err)
	}

	tables := []string{
		"schema_version",
		"counterparties",
		"feedback_records",
	}

	for _, table := range tables {
		row := database.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, table)
		var count int
		if err := row.Scan(&count); err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("table %s not found", table)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	// Running twice should not error.
	if err := Migrate(database); err != nil {
		t.Fatal(err)
	}
	if err := Migrate(database); err != nil {
		t.Fatal(err)
	}
}

func TestMigrate_InsertAndQuery(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := Migrate(database); err != nil {
		t.Fatal(err)
	}

	_, err = database.Exec(`
		INSERT INTO counterparties (name, contact, credit_score, past_purchases, categories)
		VALUES ('TechCorp Industries', 'procurement@techcorp.com', 9.2, 45, 'Electronics,Home')`)
	if err != nil {
		t.Fatal(err)
	}

	_, err = database.Exec(`
		INSERT INTO feedback_records (run_id, product_id, identity, strategy, confidence, status, market_context, scenarios, decision, execution)
		VALUES ('r1', 'p1', 'acme', 'retail', 0.8, 'success', '{}', '{}', '{}', '{}')`)
	if err != nil {
		t.Fatal(err)
	}

	var count int
	row := database.QueryRow(`SELECT COUNT(*) FROM feedback_records`)
	if err := row.Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 feedback record, got %d", count)
	}
}
