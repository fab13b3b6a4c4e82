package market

import (
	"context"
	"log/slog"
	"math"
	"time"

	"trustflow/internal/config"
	"trustflow/internal/strategy"
)

// CategorySignals are the raw per-category market signals a collaborator
// supplies. Scores arrive unclamped; the builder normalizes them.
type CategorySignals struct {
	Demand      float64
	Competition float64
	Trend       strategy.PriceTrend
	AvgPrice    float64
}

// SignalSource supplies raw market signals for a product category.
type SignalSource interface {
	Signals(ctx context.Context, category string) (CategorySignals, error)
}

// PoolSizer reports how many counterparties are available for fan-out
// strategies. Usually backed by the counterparty registry.
type PoolSizer interface {
	PoolSize(ctx context.Context) (int, error)
}

// Narrator optionally supplies free-text market insights for the context.
type Narrator interface {
	Narrate(ctx context.Context, p strategy.Product) (string, error)
}

// Builder assembles a MarketContext from collaborator-supplied signals.
// Any collaborator failure degrades to a neutral default instead of
// aborting the run.
type Builder struct {
	signals  SignalSource
	pool     PoolSizer
	narrator Narrator // may be nil
}

func NewBuilder(signals SignalSource, pool PoolSizer, narrator Narrator) *Builder {
	return &Builder{signals: signals, pool: pool, narrator: narrator}
}

// Build assembles the market context for one pipeline run.
func (b *Builder) Build(ctx context.Context, p strategy.Product) strategy.MarketContext {
	sig, err := b.signals.Signals(ctx, p.Category)
	if err != nil {
		slog.Warn("signal source failed, using neutral defaults", "category", p.Category, "error", err)
		sig = NeutralSignals()
	}
	if sig.Trend != strategy.TrendIncreasing && sig.Trend != strategy.TrendDecreasing {
		sig.Trend = strategy.TrendStable
	}

	demand := clamp01(sig.Demand)

	poolSize := 0
	if b.pool != nil {
		if n, err := b.pool.PoolSize(ctx); err != nil {
			slog.Warn("pool size lookup failed", "error", err)
		} else {
			poolSize = n
		}
	}

	var insights string
	if b.narrator != nil {
		if text, err := b.narrator.Narrate(ctx, p); err != nil {
			slog.Warn("market narration unavailable", "error", err)
		} else {
			insights = text
		}
	}

	return strategy.MarketContext{
		DemandScore:      demand,
		CompetitionLevel: clamp01(sig.Competition),
		BulkInterest:     bulkInterest(p.Quantity, demand),
		PriceTrend:       sig.Trend,
		SeasonalFactor:   SeasonalFactor(time.Now()),
		AvgCategoryPrice: math.Max(sig.AvgPrice, 0),
		PoolSize:         poolSize,
		Insights:         insights,
	}
}

// NeutralSignals is the documented degraded default when no signal source
// answer is available.
func NeutralSignals() CategorySignals {
	return CategorySignals{
		Demand:      0.5,
		Competition: 0.5,
		Trend:       strategy.TrendStable,
	}
}

// SeasonalFactor is a bounded step function of the calendar month, stepping
// through 0.8, 0.9, 1.0 and 1.1 across each quarter. Never non-positive.
func SeasonalFactor(now time.Time) float64 {
	month := int(now.Month())
	return 1.0 + 0.2*float64(month%4-2)/2
}

// bulkInterest scales with inventory size and demand, capped at 0.9.
func bulkInterest(quantity int, demand float64) float64 {
	return math.Min(0.9, float64(quantity)/100*demand)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// StaticSignals serves the configured per-category signal table. Categories
// missing from the table fall back to neutral defaults.
type StaticSignals struct {
	categories map[string]config.CategoryConfig
}

func NewStaticSignals(cfg config.MarketConfig) *StaticSignals {
	return &StaticSignals{categories: cfg.Categories}
}

func (s *StaticSignals) Signals(_ context.Context, category string) (CategorySignals, error) {
	c, ok := s.categories[category]
	if !ok {
		return NeutralSignals(), nil
	}
	return CategorySignals{
		Demand:      c.Demand,
		Competition: c.Competition,
		Trend:       strategy.PriceTrend(c.Trend),
		AvgPrice:    c.AvgPrice,
	}, nil
}
