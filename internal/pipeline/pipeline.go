// Package pipeline runs the strategy decision pipeline for one created
// product: market context, profit scenarios, decision, counterparty ranking,
// execution and feedback logging, always returning a complete structured
// result.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trustflow/internal/counterparty"
	"trustflow/internal/execution"
	"trustflow/internal/feedback"
	"trustflow/internal/market"
	"trustflow/internal/policy"
	"trustflow/internal/strategy"
)

// Status is the terminal status of a pipeline run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
)

// Result is the structured outcome returned to the caller for every run,
// whatever happened inside.
type Result struct {
	RunID           string                             `json:"run_id"`
	ProductID       string                             `json:"product_id"`
	Status          Status                             `json:"status"`
	State           policy.State                       `json:"decision_state"`
	Context         strategy.MarketContext             `json:"market_context"`
	Scenarios       map[string]strategy.ProfitScenario `json:"scenarios"`
	Decision        strategy.Decision                  `json:"decision"`
	PotentialBuyers []string                           `json:"potential_buyers,omitempty"`
	Execution       execution.Result                   `json:"execution"`
	Timestamp       time.Time                          `json:"timestamp"`
}

// Runner wires the pipeline stages. All collaborators are injected; a Runner
// holds no mutable state of its own, so independent runs may execute
// concurrently.
type Runner struct {
	builder      *market.Builder
	model        *strategy.ProfitModel
	policy       *policy.Policy
	ranker       *counterparty.Ranker
	orchestrator *execution.Orchestrator
	store        *feedback.Store
	maxListed    int
	maxContacted int
}

func NewRunner(
	builder *market.Builder,
	model *strategy.ProfitModel,
	pol *policy.Policy,
	ranker *counterparty.Ranker,
	orchestrator *execution.Orchestrator,
	store *feedback.Store,
	maxListed, maxContacted int,
) *Runner {
	return &Runner{
		builder:      builder,
		model:        model,
		policy:       pol,
		ranker:       ranker,
		orchestrator: orchestrator,
		store:        store,
		maxListed:    maxListed,
		maxContacted: maxContacted,
	}
}

// Run executes the stages strictly in sequence and always returns a
// terminal result; no failure mode escapes as a panic or error.
func (r *Runner) Run(ctx context.Context, p strategy.Product) (res Result) {
	res = Result{
		RunID:     uuid.NewString(),
		ProductID: p.ID,
		State:     policy.StateAwaitingOracle,
		Timestamp: time.Now(),
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("pipeline run panicked", "run", res.RunID, "product", p.ID, "panic", rec)
			res.Status = StatusError
		}
	}()

	slog.Info("pipeline run starting", "run", res.RunID, "product", p.ID, "category", p.Category, "quantity", p.Quantity)

	mc := r.builder.Build(ctx, p)
	res.Context = mc

	scenarios := r.model.Scenarios(p, mc)

	dec, state := r.policy.Decide(ctx, p, mc, scenarios)
	res.State = state
	res.Decision = dec

	desc, ok := r.policy.Set().ByID(dec.Strategy)
	if !ok {
		// The policy enforces set membership; reaching here is a bug.
		slog.Error("decision outside active set", "run", res.RunID, "strategy", dec.Strategy)
		res.Status = StatusError
		res.Scenarios = scenarios
		return res
	}

	// The decision's suggested price is the advisory pricing hint for the
	// selected strategy; recompute its scenario with it. A decided price of
	// exactly 0 is a real price (a free listing); a fallback only reprices
	// when the listed price is known.
	if !dec.Fallback || dec.SuggestedPrice > 0 {
		scenarios[desc.ID] = r.model.ScenarioAt(desc, p, mc, dec.SuggestedPrice)
	}
	res.Scenarios = scenarios

	var targets []counterparty.Counterparty
	if desc.Kind == strategy.KindFanOut {
		listed, err := r.ranker.Rank(ctx, p.Category, r.maxListed)
		if err != nil {
			slog.Error("counterparty ranking failed", "run", res.RunID, "error", err)
		}
		for _, c := range listed {
			res.PotentialBuyers = append(res.PotentialBuyers, c.Name)
		}
		targets = listed
		if len(targets) > r.maxContacted {
			targets = targets[:r.maxContacted]
		}
	}

	execRes := r.orchestrator.Execute(ctx, desc, p, dec, scenarios[desc.ID], mc, targets)
	res.Execution = execRes
	res.Status = runStatus(execRes.Status)

	r.appendFeedback(ctx, p, res)

	slog.Info("pipeline run complete",
		"run", res.RunID,
		"product", p.ID,
		"strategy", dec.Strategy,
		"state", state,
		"status", res.Status,
	)
	return res
}

// runStatus maps an execution outcome to the run's terminal status.
func runStatus(s execution.Status) Status {
	switch s {
	case execution.StatusSuccess:
		return StatusSuccess
	case execution.StatusPartial:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// appendFeedback logs the run to the feedback store. A persistence failure
// is logged and swallowed: the decision and execution already concluded.
func (r *Runner) appendFeedback(ctx context.Context, p strategy.Product, res Result) {
	if r.store == nil {
		return
	}
	_, err := r.store.Append(ctx, feedback.Record{
		RunID:      res.RunID,
		ProductID:  p.ID,
		Identity:   p.Owner,
		Strategy:   res.Decision.Strategy,
		Confidence: res.Decision.Confidence,
		Fallback:   res.Decision.Fallback,
		Status:     string(res.Status),
		Context:    res.Context,
		Scenarios:  res.Scenarios,
		Decision:   res.Decision,
		Execution:  res.Execution,
	})
	if err != nil {
		slog.Error("feedback append failed", "run", res.RunID, "product", p.ID, "error", err)
	}
}
