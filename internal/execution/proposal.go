package execution

import (
	"fmt"
	"time"

	"trustflow/internal/counterparty"
	"trustflow/internal/strategy"
)

// ProposalContent renders the outreach proposal sent alongside a fan-out
// operation: per-unit terms, minimum order, volume discount and validity.
func ProposalContent(p strategy.Product, scen strategy.ProfitScenario, c counterparty.Counterparty, now time.Time) string {
	minOrder := p.Quantity / 4
	if minOrder < 10 {
		minOrder = 10
	}
	discount := 0.03
	if p.Quantity > 100 {
		discount = 0.05
	}
	expiry := now.AddDate(0, 0, 30).Format("2006-01-02")

	return fmt.Sprintf(
		"Dear %s,\n\n"+
			"We are offering %d units of %s (%s) at %.2f per unit.\n"+
			"Orders of %d units or more receive a %.0f%% volume discount (%.2f per unit).\n"+
			"Your profile (credit score %.1f/10, %d completed purchases) qualifies for priority allocation.\n\n"+
			"This proposal is valid until %s. Payment net 30 days from delivery.\n",
		c.Name,
		p.Quantity, p.Name, p.Category, scen.UnitPrice,
		minOrder, discount*100, scen.UnitPrice*(1-discount),
		c.CreditScore, c.PastPurchases,
		expiry,
	)
}
