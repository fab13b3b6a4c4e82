package strategy

import (
	"time"
)

// Product is one sellable unit as delivered by the inbound trigger. It is
// immutable for the duration of a pipeline run; the caller owns it.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Quantity    int       `json:"quantity"`
	UnitCost    float64   `json:"unit_cost"`
	ListedPrice float64   `json:"listed_price"` // current catalog price, used by the fallback decision
	Category    string    `json:"category"`
	Owner       string    `json:"owner"` // identity feedback queries are keyed on
	CreatedAt   time.Time `json:"created_at"`
}

// PriceTrend is the direction of recent category pricing.
type PriceTrend string

const (
	TrendIncreasing PriceTrend = "increasing"
	TrendStable     PriceTrend = "stable"
	TrendDecreasing PriceTrend = "decreasing"
)

// MarketContext is the per-run view of market conditions a decision is made
// against. All scores are clamped to [0,1] by the builder; SeasonalFactor is
// always positive. It is created per run and never persisted standalone.
type MarketContext struct {
	DemandScore      float64    `json:"demand_score"`
	CompetitionLevel float64    `json:"competition_level"`
	BulkInterest     float64    `json:"bulk_interest"`
	PriceTrend       PriceTrend `json:"price_trend"`
	SeasonalFactor   float64    `json:"seasonal_factor"`
	AvgCategoryPrice float64    `json:"avg_category_price"`
	PoolSize         int        `json:"pool_size"`          // counterparties available for fan-out strategies
	Insights         string     `json:"insights,omitempty"` // advisory-origin narrative, may be empty
}

// ProfitScenario is the modelled outcome of pursuing one strategy.
// Derived once, never mutated.
type ProfitScenario struct {
	Strategy    string  `json:"strategy"`
	UnitPrice   float64 `json:"unit_price"`
	TotalProfit float64 `json:"total_profit"`
	DaysToSale  float64 `json:"days_to_sale"`
}

// Decision is the single validated outcome of a pipeline run.
type Decision struct {
	Strategy       string  `json:"strategy"`
	Rationale      string  `json:"rationale"`
	Confidence     float64 `json:"confidence"`
	SuggestedPrice float64 `json:"suggested_price"`
	Fallback       bool    `json:"fallback"`
}

// ExecKind determines how a strategy's side effects are performed.
type ExecKind int

const (
	KindSingleTarget ExecKind = iota // exactly one ledger operation
	KindFanOut                       // one operation per ranked counterparty
	KindInert                        // no side effect
)

func (k ExecKind) String() string {
	switch k {
	case KindSingleTarget:
		return "single-target"
	case KindFanOut:
		return "fan-out"
	case KindInert:
		return "inert"
	}
	return "unknown"
}

// ScoreKind names the MarketContext score that drives a strategy's
// time-to-sale estimate.
type ScoreKind int

const (
	ScoreDemand ScoreKind = iota
	ScoreBulkInterest
)

// Descriptor is the static description of one strategy: how it executes and
// how its scenario is priced.
type Descriptor struct {
	ID             string
	Kind           ExecKind
	CostMultiplier float64   // unit price heuristic when no pricing hint exists
	ListedPrice    bool      // sold at a listed price; seasonal multiplier applies
	BaseDays       float64   // numerator for the time-to-sale estimate
	TimeScore      ScoreKind // which context score divides BaseDays
}

// Set is a closed set of strategies a policy may choose between.
type Set struct {
	Name       string
	Members    []Descriptor
	FallbackID string // single-target, immediate-liquidity member
}

// ByID looks up a member descriptor.
func (s Set) ByID(id string) (Descriptor, bool) {
	for _, d := range s.Members {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Contains reports whether id names a member of the set.
func (s Set) Contains(id string) bool {
	_, ok := s.ByID(id)
	return ok
}

// Fallback returns the set's fallback descriptor.
func (s Set) Fallback() Descriptor {
	d, ok := s.ByID(s.FallbackID)
	if !ok && len(s.Members) > 0 {
		return s.Members[0]
	}
	return d
}

// IDs returns the member ids in declaration order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s.Members))
	for _, d := range s.Members {
		ids = append(ids, d.ID)
	}
	return ids
}

// SalesSet is the retail/bulk/hold strategy set for direct consumer goods.
func SalesSet() Set {
	return Set{
		Name: "sales",
		Members: []Descriptor{
			{ID: "retail", Kind: KindSingleTarget, CostMultiplier: 1.5, ListedPrice: true, BaseDays: 30, TimeScore: ScoreDemand},
			{ID: "bulk", Kind: KindFanOut, CostMultiplier: 1.25, BaseDays: 10, TimeScore: ScoreBulkInterest},
			{ID: "hold", Kind: KindInert, CostMultiplier: 1.0, BaseDays: 90, TimeScore: ScoreDemand},
		},
		FallbackID: "retail",
	}
}

// PlacementSet is the marketplace/relationships set for manufactured goods.
func PlacementSet() Set {
	return Set{
		Name: "placement",
		Members: []Descriptor{
			{ID: "marketplace", Kind: KindSingleTarget, CostMultiplier: 1.35, ListedPrice: true, BaseDays: 30, TimeScore: ScoreDemand},
			{ID: "relationships", Kind: KindFanOut, CostMultiplier: 1.2, BaseDays: 20, TimeScore: ScoreBulkInterest},
		},
		FallbackID: "marketplace",
	}
}

// SetByName returns a built-in strategy set by its configured name.
func SetByName(name string) (Set, bool) {
	switch name {
	case "sales":
		return SalesSet(), true
	case "placement":
		return PlacementSet(), true
	}
	return Set{}, false
}
