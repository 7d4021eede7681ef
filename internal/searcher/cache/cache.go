// Package cache stores ranked search results in Redis. Keys combine the
// engine fingerprint with the canonical query terms and limit, so results
// from a different corpus or stop-word set never collide, and queries that
// normalise to the same terms share one entry.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "search:"

// Store is the subset of the Redis client the cache uses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// Stats reports cache effectiveness since startup.
type Stats struct {
	Hits         int64  `json:"hits"`
	Misses       int64  `json:"misses"`
	BreakerState string `json:"breaker_state"`
}

type QueryCache struct {
	store   Store
	ttl     time.Duration
	prefix  string
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache scoped to the engine identified by fingerprint. m may
// be nil.
func New(store Store, ttl time.Duration, fingerprint string, m *metrics.Metrics) *QueryCache {
	c := &QueryCache{
		store:   store,
		ttl:     ttl,
		prefix:  keyPrefix + fingerprint + ":",
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
	c.breaker = resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     15 * time.Second,
		IsFailure:        func(err error) bool { return !pkgredis.IsNilError(err) },
		OnStateChange: func(name string, state resilience.State) {
			if m != nil {
				m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
			}
		},
	})
	if m != nil {
		m.CircuitBreakerState.WithLabelValues(c.breaker.Name()).Set(float64(resilience.StateClosed))
	}
	return c
}

// Get returns the cached result for plan and limit. Store failures are
// logged and reported as a miss.
func (c *QueryCache) Get(ctx context.Context, plan *parser.QueryPlan, limit int) (*executor.SearchResult, bool) {
	key := c.Key(plan, limit)
	data, err := resilience.Call(c.breaker, func() ([]byte, error) {
		return c.store.Get(ctx, key)
	})
	if err != nil {
		if !pkgredis.IsNilError(err) && !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	if data == nil {
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	// The cached entry may have been written for an equivalent query with
	// different spelling.
	result.Query = plan.RawQuery
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "query", plan.RawQuery, "key", key)
	return &result, true
}

// Set stores result for plan and limit. Failures are logged and dropped.
func (c *QueryCache) Set(ctx context.Context, plan *parser.QueryPlan, limit int, result *executor.SearchResult) {
	key := c.Key(plan, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or runs compute, collapsing
// concurrent computations of the same key into one. The bool reports a
// cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	plan *parser.QueryPlan,
	limit int,
	compute func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, plan, limit); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(c.Key(plan, limit), func() (interface{}, error) {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, plan, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	shared := *val.(*executor.SearchResult)
	shared.Query = plan.RawQuery
	return &shared, false, nil
}

// Invalidate removes every entry written for this engine.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := resilience.Call(c.breaker, func() (int64, error) {
		return c.store.DeletePrefix(ctx, c.prefix)
	})
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() Stats {
	return Stats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		BreakerState: c.breaker.Current().String(),
	}
}

// Key derives the cache key for plan and limit from the plan's canonical
// terms. The executor sums scores in that same order, so a cached result is
// bit-identical to a fresh one for any ordering of the query. Repetition is
// kept because it changes scores.
func (c *QueryCache) Key(plan *parser.QueryPlan, limit int) string {
	raw := strings.Join(plan.Canonical(), " ") + fmt.Sprintf("|limit=%d", limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", c.prefix, hash[:16])
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
