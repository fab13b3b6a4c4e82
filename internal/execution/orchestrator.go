package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"trustflow/internal/counterparty"
	"trustflow/internal/strategy"
)

// Status classifies an execution outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
)

// OpResult is the outcome of one sub-operation.
type OpResult struct {
	Target   string `json:"target"` // counterparty name, or the product id for single-target
	Status   Status `json:"status"`
	TxID     string `json:"tx_id,omitempty"`
	Err      string `json:"error,omitempty"`
	Notified bool   `json:"notified,omitempty"`
	Sequence uint64 `json:"sequence"`
}

// Result aggregates a strategy's side effects. SuccessCount + FailureCount
// always equals the number of attempted sub-operations.
type Result struct {
	Strategy     string     `json:"strategy"`
	Status       Status     `json:"status"`
	Ops          []OpResult `json:"ops"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	Context      string     `json:"context,omitempty"` // inert strategies: market snapshot rationale
}

// Orchestrator performs a chosen strategy's side effects against the ledger
// and notifier, tolerating partial failure on fan-out. It never retries a
// ledger submission.
type Orchestrator struct {
	ledger    Ledger
	notifier  Notifier
	seq       *Sequencer
	opTimeout time.Duration
}

func NewOrchestrator(ledger Ledger, notifier Notifier, seq *Sequencer, opTimeout time.Duration) *Orchestrator {
	if opTimeout <= 0 {
		opTimeout = 30 * time.Second
	}
	return &Orchestrator{ledger: ledger, notifier: notifier, seq: seq, opTimeout: opTimeout}
}

// Execute runs the side effects for the decided strategy. targets is ignored
// unless the descriptor is fan-out.
func (o *Orchestrator) Execute(
	ctx context.Context,
	d strategy.Descriptor,
	p strategy.Product,
	dec strategy.Decision,
	scen strategy.ProfitScenario,
	mc strategy.MarketContext,
	targets []counterparty.Counterparty,
) Result {
	switch d.Kind {
	case strategy.KindSingleTarget:
		return o.executeSingle(ctx, p, dec, scen)
	case strategy.KindFanOut:
		return o.executeFanOut(ctx, p, dec, scen, targets)
	default:
		return o.executeInert(p, dec, mc)
	}
}

// executeSingle performs exactly one create-or-update-listing submission.
// Its outcome is the sole entry of the result.
func (o *Orchestrator) executeSingle(ctx context.Context, p strategy.Product, dec strategy.Decision, scen strategy.ProfitScenario) Result {
	opCtx, cancel := context.WithTimeout(ctx, o.opTimeout)
	defer cancel()

	seq := o.seq.Next(p.Owner)
	receipt, err := o.ledger.Submit(opCtx, SubmitRequest{
		ProductID: p.ID,
		Strategy:  dec.Strategy,
		UnitPrice: scen.UnitPrice,
		Quantity:  p.Quantity,
		Identity:  p.Owner,
		Sequence:  seq,
	})

	res := Result{Strategy: dec.Strategy}
	if err != nil {
		slog.Error("listing submission failed", "product", p.ID, "strategy", dec.Strategy, "error", err)
		res.Status = StatusError
		res.FailureCount = 1
		res.Ops = []OpResult{{Target: p.ID, Status: StatusError, Err: err.Error(), Sequence: seq}}
		return res
	}

	slog.Info("listing submitted", "product", p.ID, "strategy", dec.Strategy, "price", scen.UnitPrice, "tx", receipt.TxID)
	res.Status = StatusSuccess
	res.SuccessCount = 1
	res.Ops = []OpResult{{Target: p.ID, Status: StatusSuccess, TxID: receipt.TxID, Sequence: seq}}
	return res
}

// executeFanOut performs one independent operation per ranked counterparty.
// Sequence numbers are reserved in rank order before dispatch so the signing
// identity's transactions stay serial even though the submissions themselves
// run concurrently. Every attempt is awaited; none is dropped.
func (o *Orchestrator) executeFanOut(ctx context.Context, p strategy.Product, dec strategy.Decision, scen strategy.ProfitScenario, targets []counterparty.Counterparty) Result {
	res := Result{Strategy: dec.Strategy}
	if len(targets) == 0 {
		slog.Warn("fan-out with no eligible counterparties", "product", p.ID, "strategy", dec.Strategy)
		res.Status = StatusFailed
		return res
	}

	seqs := make([]uint64, len(targets))
	for i := range targets {
		seqs[i] = o.seq.Next(p.Owner)
	}

	ops := make([]OpResult, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, c counterparty.Counterparty) {
			defer wg.Done()
			ops[i] = o.fanOutOp(ctx, p, dec, scen, c, seqs[i])
		}(i, target)
	}
	wg.Wait()

	res.Ops = ops
	for _, op := range ops {
		if op.Status == StatusSuccess {
			res.SuccessCount++
		} else {
			res.FailureCount++
		}
	}

	switch {
	case res.FailureCount == 0:
		res.Status = StatusSuccess
	case res.SuccessCount == 0:
		res.Status = StatusFailed
	default:
		res.Status = StatusPartial
	}

	// Mark the product strategy-active on the ledger. Best-effort, not a
	// counted sub-operation.
	if res.SuccessCount > 0 {
		if _, err := o.ledger.UpdateStatus(ctx, p.ID, dec.Strategy+"-active"); err != nil {
			slog.Warn("product status update failed", "product", p.ID, "error", err)
		}
	}

	slog.Info("fan-out complete",
		"product", p.ID,
		"strategy", dec.Strategy,
		"attempted", len(ops),
		"succeeded", res.SuccessCount,
		"failed", res.FailureCount,
	)
	return res
}

func (o *Orchestrator) fanOutOp(ctx context.Context, p strategy.Product, dec strategy.Decision, scen strategy.ProfitScenario, c counterparty.Counterparty, seq uint64) OpResult {
	opCtx, cancel := context.WithTimeout(ctx, o.opTimeout)
	defer cancel()

	receipt, err := o.ledger.Submit(opCtx, SubmitRequest{
		ProductID: p.ID,
		Strategy:  dec.Strategy,
		UnitPrice: scen.UnitPrice,
		Quantity:  p.Quantity,
		Target:    c.Name,
		Identity:  p.Owner,
		Sequence:  seq,
	})
	if err != nil {
		slog.Error("counterparty operation failed", "product", p.ID, "counterparty", c.Name, "error", err)
		return OpResult{Target: c.Name, Status: StatusError, Err: err.Error(), Sequence: seq}
	}

	notified := false
	if o.notifier != nil {
		notified = o.notifier.Send(opCtx, c, ProposalContent(p, scen, c, time.Now()), p)
		if !notified {
			slog.Warn("proposal delivery failed", "counterparty", c.Name, "product", p.ID)
		}
	}

	return OpResult{Target: c.Name, Status: StatusSuccess, TxID: receipt.TxID, Notified: notified, Sequence: seq}
}

// executeInert records a successful no-op with the market snapshot as
// rationale context.
func (o *Orchestrator) executeInert(p strategy.Product, dec strategy.Decision, mc strategy.MarketContext) Result {
	slog.Info("holding product, no side effects", "product", p.ID, "strategy", dec.Strategy)
	return Result{
		Strategy: dec.Strategy,
		Status:   StatusSuccess,
		Context: fmt.Sprintf("held: demand %.2f, competition %.2f, bulk interest %.2f, trend %s",
			mc.DemandScore, mc.CompetitionLevel, mc.BulkInterest, mc.PriceTrend),
	}
}
