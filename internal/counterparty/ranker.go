package counterparty

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Ranker filters and orders the counterparty pool for fan-out execution.
type Ranker struct {
	registry       Registry
	minCreditScore float64
}

func NewRanker(registry Registry, minCreditScore float64) *Ranker {
	return &Ranker{registry: registry, minCreditScore: minCreditScore}
}

// Rank returns up to limit counterparties eligible for the category, ordered
// descending by rank score. Ties keep registry order (stable sort) so the
// result is deterministic across runs.
func (r *Ranker) Rank(ctx context.Context, category string, limit int) ([]Counterparty, error) {
	pool, err := r.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading counterparty pool: %w", err)
	}

	eligible := make([]Counterparty, 0, len(pool))
	for _, c := range pool {
		if c.CreditScore < r.minCreditScore {
			continue
		}
		if !c.Prefers(category) {
			continue
		}
		eligible = append(eligible, c)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].RankScore() > eligible[j].RankScore()
	})

	if limit >= 0 && len(eligible) > limit {
		eligible = eligible[:limit]
	}

	slog.Debug("counterparties ranked",
		"category", category,
		"pool", len(pool),
		"eligible", len(eligible),
	)
	return eligible, nil
}
