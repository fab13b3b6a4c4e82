// Package oracle is the boundary to the external advisory scorer. The
// pipeline never trusts a recommendation until it has passed Validate, and
// treats every transport failure, timeout or malformed payload identically.
package oracle

import (
	"context"
	"errors"
	"fmt"

	"trustflow/internal/strategy"
)

// ErrUnavailable covers every way the oracle can fail from the caller's
// perspective: timeout, transport error, non-2xx status, unparsable body.
var ErrUnavailable = errors.New("advisory oracle unavailable")

// Request is the bounded context sent to the oracle for one run.
type Request struct {
	Product   strategy.Product                   `json:"product"`
	Context   strategy.MarketContext             `json:"market_context"`
	Scenarios map[string]strategy.ProfitScenario `json:"scenarios"`
	Actions   []string                           `json:"actions"` // the active strategy set
	MinMargin float64                            `json:"min_profit_margin"`
}

// Recommendation is the oracle's structured answer, pre-validation.
type Recommendation struct {
	Action         string  `json:"action"`
	Rationale      string  `json:"rationale"`
	SuggestedPrice float64 `json:"suggested_price"`
	Confidence     float64 `json:"confidence"`
}

// Oracle scores a strategy recommendation for one product. Implementations
// must not be retried by the pipeline.
type Oracle interface {
	Recommend(ctx context.Context, req Request) (Recommendation, error)
}

// Validate checks every field of a recommendation against the active set.
// Unknown actions and negative prices are rejected; out-of-range confidence
// is clamped. On success the returned recommendation is safe to use verbatim.
func Validate(rec Recommendation, set strategy.Set) (Recommendation, error) {
	if !set.Contains(rec.Action) {
		return Recommendation{}, fmt.Errorf("action %q is not in the %s strategy set", rec.Action, set.Name)
	}
	if rec.SuggestedPrice < 0 {
		return Recommendation{}, fmt.Errorf("suggested price %f is negative", rec.SuggestedPrice)
	}
	if rec.Confidence < 0 {
		rec.Confidence = 0
	}
	if rec.Confidence > 1 {
		rec.Confidence = 1
	}
	return rec, nil
}
