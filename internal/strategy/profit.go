package strategy

import (
	"math"
)

// minScoreFloor keeps time-to-sale denominators away from zero. A score of 0
// still yields a finite (if long) estimate rather than a division blow-up.
const minScoreFloor = 0.05

// ProfitModel computes per-strategy profit scenarios from a product and its
// market context.
type ProfitModel struct {
	set Set
}

func NewProfitModel(set Set) *ProfitModel {
	return &ProfitModel{set: set}
}

// Scenarios computes one scenario per member of the active set using the
// cost-multiplier heuristics (no pricing hint).
func (m *ProfitModel) Scenarios(p Product, mc MarketContext) map[string]ProfitScenario {
	out := make(map[string]ProfitScenario, len(m.set.Members))
	for _, d := range m.set.Members {
		out[d.ID] = m.Scenario(d, p, mc, 0)
	}
	return out
}

// Scenario computes the scenario for a single strategy. A hint > 0 is an
// advisory unit price and overrides the cost-multiplier heuristic.
func (m *ProfitModel) Scenario(d Descriptor, p Product, mc MarketContext, hint float64) ProfitScenario {
	if hint > 0 {
		return m.ScenarioAt(d, p, mc, hint)
	}
	return m.ScenarioAt(d, p, mc, p.UnitCost*d.CostMultiplier)
}

// ScenarioAt prices the strategy at an explicit unit price. Zero is a real
// price here (a free listing). The seasonal multiplier applies only to
// strategies sold at listed prices.
func (m *ProfitModel) ScenarioAt(d Descriptor, p Product, mc MarketContext, price float64) ProfitScenario {
	unitPrice := price
	if d.ListedPrice {
		unitPrice *= mc.SeasonalFactor
	}
	unitPrice = roundMoney(unitPrice)

	profit := roundMoney((unitPrice - p.UnitCost) * float64(p.Quantity))

	score := mc.DemandScore
	if d.TimeScore == ScoreBulkInterest {
		score = mc.BulkInterest
	}
	days := d.BaseDays / math.Max(score, minScoreFloor)

	return ProfitScenario{
		Strategy:    d.ID,
		UnitPrice:   unitPrice,
		TotalProfit: profit,
		DaysToSale:  days,
	}
}

// roundMoney rounds to currency precision (2 decimal places).
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
