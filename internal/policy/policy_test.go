package policy

import (
	"context"
	"testing"

	"trustflow/internal/oracle"
	"trustflow/internal/strategy"
)

type stubOracle struct {
	rec oracle.Recommendation
	err error
}

func (s stubOracle) Recommend(context.Context, oracle.Request) (oracle.Recommendation, error) {
	return s.rec, s.err
}

func testProduct() strategy.Product {
	return strategy.Product{ID: "p1", Name: "Widget", Quantity: 100, UnitCost: 299.99, ListedPrice: 329.99, Category: "Electronics"}
}

func TestDecide_UsesValidOracleOutputVerbatim(t *testing.T) {
	p := New(strategy.SalesSet(), stubOracle{rec: oracle.Recommendation{
		Action: "bulk", Rationale: "wholesale demand", SuggestedPrice: 350, Confidence: 0.8,
	}}, 0.5, 0.15)

	dec, state := p.Decide(context.Background(), testProduct(), strategy.MarketContext{}, nil)
	if state != StateDecided {
		t.Fatalf("expected decided state, got %s", state)
	}
	if dec.Strategy != "bulk" || dec.SuggestedPrice != 350 || dec.Confidence != 0.8 {
		t.Errorf("oracle output not used verbatim: %+v", dec)
	}
	if dec.Fallback {
		t.Error("decision should not be marked fallback")
	}
}

func TestDecide_OracleFailureFallsBack(t *testing.T) {
	p := New(strategy.SalesSet(), stubOracle{err: oracle.ErrUnavailable}, 0.5, 0.15)

	dec, state := p.Decide(context.Background(), testProduct(), strategy.MarketContext{}, nil)
	if state != StateFallbackDecided {
		t.Fatalf("expected fallback state, got %s", state)
	}
	if dec.Strategy != "retail" {
		t.Errorf("expected fallback to single-target retail, got %s", dec.Strategy)
	}
	if dec.Confidence != 0.5 {
		t.Errorf("expected fixed fallback confidence 0.5, got %f", dec.Confidence)
	}
	if dec.SuggestedPrice != 329.99 {
		t.Errorf("expected product listed price, got %f", dec.SuggestedPrice)
	}
	if dec.Rationale != FallbackRationale {
		t.Errorf("expected the fixed fallback rationale, got %q", dec.Rationale)
	}
	if !dec.Fallback {
		t.Error("decision should be marked fallback")
	}
}

func TestDecide_UnknownActionNeverReachesDecision(t *testing.T) {
	p := New(strategy.SalesSet(), stubOracle{rec: oracle.Recommendation{
		Action: "arbitrage", SuggestedPrice: 10, Confidence: 0.99,
	}}, 0.5, 0.15)

	dec, state := p.Decide(context.Background(), testProduct(), strategy.MarketContext{}, nil)
	if state != StateFallbackDecided {
		t.Fatalf("expected fallback state, got %s", state)
	}
	if !strategy.SalesSet().Contains(dec.Strategy) {
		t.Errorf("decision strategy %q outside active set", dec.Strategy)
	}
	if dec.Strategy == "arbitrage" {
		t.Error("unknown oracle action must not reach the decision")
	}
}

func TestDecide_PlacementSetFallback(t *testing.T) {
	p := New(strategy.PlacementSet(), stubOracle{err: oracle.ErrUnavailable}, 0.5, 0.15)

	dec, _ := p.Decide(context.Background(), testProduct(), strategy.MarketContext{}, nil)
	if dec.Strategy != "marketplace" {
		t.Errorf("placement set should fall back to marketplace, got %s", dec.Strategy)
	}
}
