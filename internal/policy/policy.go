// Package policy turns profit scenarios plus an advisory recommendation into
// one validated decision, falling back deterministically when the oracle is
// unavailable or answers outside the active strategy set.
package policy

import (
	"context"
	"log/slog"

	"trustflow/internal/oracle"
	"trustflow/internal/strategy"
)

// State is the logical state a decision was produced in.
type State string

const (
	StateAwaitingOracle  State = "awaiting-oracle"
	StateDecided         State = "decided"
	StateFallbackDecided State = "fallback-decided"
)

// FallbackRationale is the fixed rationale recorded on every fallback
// decision, so downstream analytics can count oracle outages.
const FallbackRationale = "advisory oracle unavailable or invalid; selecting immediate-liquidity strategy at the current listed price"

// Policy selects exactly one strategy per run. The emitted decision is
// always a member of the active set; this is enforced, not assumed.
type Policy struct {
	set                strategy.Set
	oracle             oracle.Oracle
	fallbackConfidence float64
	minMargin          float64 // advisory input forwarded to the oracle
}

func New(set strategy.Set, o oracle.Oracle, fallbackConfidence, minMargin float64) *Policy {
	return &Policy{
		set:                set,
		oracle:             o,
		fallbackConfidence: fallbackConfidence,
		minMargin:          minMargin,
	}
}

// Set returns the active strategy set the policy decides over.
func (p *Policy) Set() strategy.Set { return p.set }

// Decide consults the oracle once and produces a decision. The returned
// state is StateDecided when the oracle's validated output was used verbatim
// and StateFallbackDecided otherwise.
func (p *Policy) Decide(ctx context.Context, product strategy.Product, mc strategy.MarketContext, scenarios map[string]strategy.ProfitScenario) (strategy.Decision, State) {
	rec, err := p.oracle.Recommend(ctx, oracle.Request{
		Product:   product,
		Context:   mc,
		Scenarios: scenarios,
		Actions:   p.set.IDs(),
		MinMargin: p.minMargin,
	})
	if err != nil {
		slog.Warn("oracle call failed, falling back", "product", product.ID, "error", err)
		return p.fallback(product), StateFallbackDecided
	}

	valid, err := oracle.Validate(rec, p.set)
	if err != nil {
		slog.Warn("oracle recommendation rejected, falling back", "product", product.ID, "error", err)
		return p.fallback(product), StateFallbackDecided
	}

	slog.Info("decision made",
		"product", product.ID,
		"strategy", valid.Action,
		"confidence", valid.Confidence,
		"suggested_price", valid.SuggestedPrice,
	)
	return strategy.Decision{
		Strategy:       valid.Action,
		Rationale:      valid.Rationale,
		Confidence:     valid.Confidence,
		SuggestedPrice: valid.SuggestedPrice,
	}, StateDecided
}

// fallback selects the set's lowest-risk single-target strategy with a fixed
// confidence and the product's current listed price.
func (p *Policy) fallback(product strategy.Product) strategy.Decision {
	fb := p.set.Fallback()
	price := product.ListedPrice
	if price < 0 {
		price = 0
	}
	return strategy.Decision{
		Strategy:       fb.ID,
		Rationale:      FallbackRationale,
		Confidence:     p.fallbackConfidence,
		SuggestedPrice: price,
		Fallback:       true,
	}
}
