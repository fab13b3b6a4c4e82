package market

import (
	"context"
	"sync"
	"time"
)

// CachedSignals wraps a SignalSource with a TTL-based in-memory cache, so
// repeated runs for the same category within the window reuse one lookup.
type CachedSignals struct {
	mu      sync.RWMutex
	source  SignalSource
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	signals   CategorySignals
	fetchedAt time.Time
}

func NewCachedSignals(source SignalSource, ttl time.Duration) *CachedSignals {
	return &CachedSignals{
		source:  source,
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *CachedSignals) Signals(ctx context.Context, category string) (CategorySignals, error) {
	c.mu.RLock()
	entry, ok := c.entries[category]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) <= c.ttl {
		return entry.signals, nil
	}

	sig, err := c.source.Signals(ctx, category)
	if err != nil {
		// Errors are not cached; let the caller degrade.
		return CategorySignals{}, err
	}

	c.mu.Lock()
	c.entries[category] = cacheEntry{signals: sig, fetchedAt: time.Now()}
	c.mu.Unlock()
	return sig, nil
}
