// Package cache provides the in-process result cache for warehouse reads.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lorrc/support-analytics-backend/internal/core/ports"
)

type entry struct {
	value      any
	computedAt time.Time
}

// TTLCache memoizes producer results per key for a fixed TTL. An entry is
// live while its age is strictly under the TTL; at or past the TTL the
// producer runs again. Producer errors are never stored, so a failed fill
// retries on the next access. Concurrent sessions may each trigger a fill
// for the same key; there is no cross-session dedup.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	clock   ports.Clock

	hits   prometheus.Counter
	misses prometheus.Counter
	errors prometheus.Counter
}

var _ ports.ResultCache = (*TTLCache)(nil)

// NewTTLCache creates a cache with the given TTL and clock. Metrics are
// registered on reg when it is non-nil.
func NewTTLCache(ttl time.Duration, clk ports.Clock, reg prometheus.Registerer) *TTLCache {
	c := &TTLCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		clock:   clk,
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Number of cache reads served without invoking the producer.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Number of cache reads that invoked the producer.",
		}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "result_cache_fill_errors_total",
			Help: "Number of producer invocations that returned an error.",
		}),
	}

	if reg != nil {
		reg.MustRegister(c.hits, c.misses, c.errors)
	}

	return c
}

// GetOrCompute returns the live cached value for key, or invokes producer,
// stores the result stamped with the current time, and returns it.
func (c *TTLCache) GetOrCompute(ctx context.Context, key string, producer func(context.Context) (any, error)) (any, error) {
	now := c.clock.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && now.Sub(e.computedAt) < c.ttl {
		c.hits.Inc()
		return e.value, nil
	}

	c.misses.Inc()
	value, err := producer(ctx)
	if err != nil {
		c.errors.Inc()
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = entry{value: value, computedAt: now}
	c.mu.Unlock()

	return value, nil
}

// Len reports the number of stored entries, live or expired.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
