package execution

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"trustflow/internal/counterparty"
	"trustflow/internal/strategy"
)

// SubmitRequest is one ledger operation: create or update a listing, or file
// an outreach agreement against a counterparty.
type SubmitRequest struct {
	ProductID string
	Strategy  string
	UnitPrice float64
	Quantity  int
	Target    string // counterparty name for fan-out operations, empty otherwise
	Identity  string // signing identity the sequence number belongs to
	Sequence  uint64
}

// Receipt identifies a submitted ledger transaction.
type Receipt struct {
	TxID string
}

// Ledger is the external transaction system. Submissions are not safe to
// retry blindly; the orchestrator never resubmits.
type Ledger interface {
	Submit(ctx context.Context, req SubmitRequest) (Receipt, error)
	UpdateStatus(ctx context.Context, productID, status string) (Receipt, error)
}

// Notifier delivers outreach content to a counterparty. Best-effort: a false
// return is recorded, never escalated.
type Notifier interface {
	Send(ctx context.Context, c counterparty.Counterparty, content string, p strategy.Product) bool
}

// Sequencer allocates strictly serial transaction sequence numbers per
// signing identity. The ledger rejects out-of-order sequences for a single
// identity, so fan-out reserves numbers here before dispatching in parallel.
type Sequencer struct {
	mu   sync.Mutex
	next map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{next: make(map[string]uint64)}
}

// Next returns the next sequence number for the identity. Serial per
// identity; safe for concurrent callers.
func (s *Sequencer) Next(identity string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.next[identity]
	s.next[identity] = n + 1
	return n
}

// LogLedger is a stand-in ledger for local runs: every submission succeeds
// with a fabricated transaction id and is logged.
type LogLedger struct{}

func (LogLedger) Submit(_ context.Context, req SubmitRequest) (Receipt, error) {
	tx := "0x" + uuid.NewString()
	slog.Info("ledger submission",
		"product", req.ProductID,
		"strategy", req.Strategy,
		"price", req.UnitPrice,
		"quantity", req.Quantity,
		"target", req.Target,
		"sequence", req.Sequence,
		"tx", tx,
	)
	return Receipt{TxID: tx}, nil
}

func (LogLedger) UpdateStatus(_ context.Context, productID, status string) (Receipt, error) {
	tx := "0x" + uuid.NewString()
	slog.Info("ledger status update", "product", productID, "status", status, "tx", tx)
	return Receipt{TxID: tx}, nil
}

// LogNotifier is a stand-in notifier that logs instead of delivering.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, c counterparty.Counterparty, content string, p strategy.Product) bool {
	slog.Info("outreach sent", "counterparty", c.Name, "contact", c.Contact, "product", p.ID, "bytes", len(content))
	return true
}
