package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Pipeline.MinCreditScore != 7.5 {
		t.Errorf("expected default min credit score 7.5, got %f", cfg.Pipeline.MinCreditScore)
	}
	if cfg.Pipeline.MaxBuyersListed != 5 {
		t.Errorf("expected default listing cap 5, got %d", cfg.Pipeline.MaxBuyersListed)
	}
	if cfg.Pipeline.MaxBuyersContacted != 3 {
		t.Errorf("expected default contact cap 3, got %d", cfg.Pipeline.MaxBuyersContacted)
	}
	if cfg.Pipeline.StrategySet != "sales" {
		t.Errorf("expected default strategy set sales, got %s", cfg.Pipeline.StrategySet)
	}
	if _, ok := cfg.Market.Categories["Electronics"]; !ok {
		t.Error("expected Electronics in default category table")
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	content := `
[general]
db_path = "/tmp/test.db"

[pipeline]
min_credit_score = 8.0
op_timeout = "5s"

[[registry.counterparties]]
name = "TechCorp Industries"
contact = "procurement@techcorp.com"
credit_score = 9.2
past_purchases = 45
categories = ["Electronics", "Home"]
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.General.DBPath != "/tmp/test.db" {
		t.Errorf("db_path not overridden: %s", cfg.General.DBPath)
	}
	if cfg.Pipeline.MinCreditScore != 8.0 {
		t.Errorf("min_credit_score not overridden: %f", cfg.Pipeline.MinCreditScore)
	}
	if cfg.Pipeline.OpTimeout.Duration != 5*time.Second {
		t.Errorf("op_timeout not parsed: %v", cfg.Pipeline.OpTimeout.Duration)
	}
	// Defaults untouched by the overlay survive.
	if cfg.Pipeline.MaxBuyersContacted != 3 {
		t.Errorf("contact cap default lost: %d", cfg.Pipeline.MaxBuyersContacted)
	}
	if len(cfg.Registry.Counterparties) != 1 {
		t.Fatalf("expected 1 seeded counterparty, got %d", len(cfg.Registry.Counterparties))
	}
	if cfg.Registry.Counterparties[0].CreditScore != 9.2 {
		t.Errorf("counterparty credit score not parsed: %f", cfg.Registry.Counterparties[0].CreditScore)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
