// Package cache memoizes match results per corridor.
//
// Keys are coarsened to ~100 m so that near-identical requests share an
// entry. Entries expire on TTL only; they are not invalidated when the
// underlying shipments change.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kilianp07/loadshare/core/logger"
	"github.com/kilianp07/loadshare/core/model"
)

// DefaultTTL bounds the staleness of cached match results.
const DefaultTTL = 300 * time.Second

// keyPrefix namespaces match entries in shared backends.
const keyPrefix = "crs:matches"

// Backend is the key/value collaborator. Implementations handle their own
// synchronization.
type Backend interface {
	// Get returns the value and whether it was found.
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// Recorder is notified of cache degradations.
type Recorder interface {
	RecordCacheError(op string, err error)
}

// CorridorKey quantizes origin and destination to three decimals.
func CorridorKey(origin, destination model.Point) string {
	return fmt.Sprintf("%s:%.3f:%.3f:%.3f:%.3f", keyPrefix, origin.Lat, origin.Lng, destination.Lat, destination.Lng)
}

// ResultCache stores MatchResults in a Backend as JSON. Every failure
// degrades to a miss or a skipped write; none is returned to the caller.
type ResultCache struct {
	backend  Backend
	logger   logger.Logger
	recorder Recorder
}

// NewResultCache wraps backend. A nil backend yields a cache that always
// misses.
func NewResultCache(backend Backend, log logger.Logger, rec Recorder) *ResultCache {
	if backend == nil {
		backend = NopBackend{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &ResultCache{backend: backend, logger: log, recorder: rec}
}

// Get returns the cached result for key.
func (c *ResultCache) Get(ctx context.Context, key string) (model.MatchResult, bool) {
	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.degrade("get", fmt.Errorf("%w: %w", model.ErrCacheUnavailable, err))
		return model.MatchResult{}, false
	}
	if !ok {
		return model.MatchResult{}, false
	}
	var res model.MatchResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		c.degrade("decode", err)
		return model.MatchResult{}, false
	}
	return res, true
}

// Put stores res under key. A non-positive ttl uses DefaultTTL.
func (c *ResultCache) Put(ctx context.Context, key string, res model.MatchResult, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	b, err := json.Marshal(res)
	if err != nil {
		c.degrade("encode", err)
		return
	}
	if err := c.backend.Put(ctx, key, string(b), ttl); err != nil {
		c.degrade("put", fmt.Errorf("%w: %w", model.ErrCacheUnavailable, err))
	}
}

func (c *ResultCache) degrade(op string, err error) {
	c.logger.Warnf("match cache %s failed: %v", op, err)
	if c.recorder != nil {
		c.recorder.RecordCacheError(op, err)
	}
}

// NopBackend never stores anything.
type NopBackend struct{}

func (NopBackend) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (NopBackend) Put(context.Context, string, string, time.Duration) error { return nil }
