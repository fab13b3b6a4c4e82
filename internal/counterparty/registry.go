// Package counterparty holds the buyer/partner registry and the ranking
// stage used by fan-out strategies.
package counterparty

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"trustflow/internal/config"
)

// Counterparty is read-only reference data describing one candidate buyer
// or partner.
type Counterparty struct {
	Name                string
	Contact             string
	CreditScore         float64 // 0-10
	PastPurchases       int
	PreferredCategories []string
}

// RankScore blends creditworthiness with purchase history.
func (c Counterparty) RankScore() float64 {
	return c.CreditScore + float64(c.PastPurchases)/100
}

// Prefers reports whether the counterparty buys in the given category.
func (c Counterparty) Prefers(category string) bool {
	for _, cat := range c.PreferredCategories {
		if cat == category {
			return true
		}
	}
	return false
}

// Registry lists the full counterparty pool in a stable registry order.
type Registry interface {
	List(ctx context.Context) ([]Counterparty, error)
}

// SQLRegistry reads counterparties from sqlite in insertion order, which is
// the tie-break order the ranker relies on.
type SQLRegistry struct {
	db *sql.DB
}

func NewSQLRegistry(db *sql.DB) *SQLRegistry {
	return &SQLRegistry{db: db}
}

// Seed inserts configured counterparties, skipping names already present.
// Safe to call on every startup.
func (r *SQLRegistry) Seed(ctx context.Context, entries []config.CounterpartyConfig) error {
	for _, e := range entries {
		_, err := r.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO counterparties (name, contact, credit_score, past_purchases, categories)
			VALUES (?, ?, ?, ?, ?)`,
			e.Name, e.Contact, e.CreditScore, e.PastPurchases, strings.Join(e.Categories, ","),
		)
		if err != nil {
			return fmt.Errorf("seeding counterparty %s: %w", e.Name, err)
		}
	}
	return nil
}

func (r *SQLRegistry) List(ctx context.Context) ([]Counterparty, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, contact, credit_score, past_purchases, categories
		FROM counterparties ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing counterparties: %w", err)
	}
	defer rows.Close()

	var out []Counterparty
	for rows.Next() {
		var c Counterparty
		var categories string
		if err := rows.Scan(&c.Name, &c.Contact, &c.CreditScore, &c.PastPurchases, &categories); err != nil {
			return nil, fmt.Errorf("scanning counterparty: %w", err)
		}
		if categories != "" {
			c.PreferredCategories = strings.Split(categories, ",")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PoolSize reports the number of registered counterparties; it backs the
// market context's pool-size signal.
func (r *SQLRegistry) PoolSize(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM counterparties`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting counterparties: %w", err)
	}
	return n, nil
}

// StaticRegistry serves a fixed in-memory pool. Used in tests and when no
// database-backed registry is wired.
type StaticRegistry struct {
	pool []Counterparty
}

func NewStaticRegistry(pool []Counterparty) *StaticRegistry {
	return &StaticRegistry{pool: pool}
}

func (r *StaticRegistry) List(context.Context) ([]Counterparty, error) {
	out := make([]Counterparty, len(r.pool))
	copy(out, r.pool)
	return out, nil
}

func (r *StaticRegistry) PoolSize(context.Context) (int, error) {
	return len(r.pool), nil
}
