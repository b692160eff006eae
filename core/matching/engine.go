// Package matching orchestrates corridor discovery, compatibility
// filtering, grouping and cost allocation for new shipment requests.
package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/loadshare/core/cache"
	"github.com/kilianp07/loadshare/core/compat"
	"github.com/kilianp07/loadshare/core/corridor"
	"github.com/kilianp07/loadshare/core/cost"
	"github.com/kilianp07/loadshare/core/events"
	"github.com/kilianp07/loadshare/core/group"
	"github.com/kilianp07/loadshare/core/logger"
	"github.com/kilianp07/loadshare/core/metrics"
	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/storage"
)

// Engine is the load-matching and cost-allocation engine. It holds no
// mutable state between calls; collaborators synchronize themselves.
type Engine struct {
	store     storage.Store
	corridor  *corridor.Query
	filter    compat.StatsFilter
	assembler group.Assembler
	allocator cost.Allocator
	cache     *cache.ResultCache
	publisher events.Publisher
	metrics   metrics.MetricsSink
	logger    logger.Logger
	cfg       Config
	now       func() time.Time
}

// NewEngine creates an engine. store is mandatory; a nil cache backend,
// publisher, sink or logger falls back to its no-op implementation.
func NewEngine(store storage.Store, backend cache.Backend, pub events.Publisher, sink metrics.MetricsSink, log logger.Logger, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("matching: nil store provided to NewEngine")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	q, err := corridor.NewQuery(store, log)
	if err != nil {
		return nil, err
	}
	return &Engine{
		store:     store,
		corridor:  q,
		filter:    compat.RuleFilter{CapacityKg: cfg.CapacityKg, MinBracketScore: cfg.MinBracketScore},
		assembler: group.NewAssembler(),
		allocator: cost.NewAllocator(),
		cache:     cache.NewResultCache(backend, log, cacheRecorder{sink: sink}),
		publisher: pub,
		metrics:   sink,
		logger:    log,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// SetFilter replaces the compatibility filter. It must be called before the
// engine is shared between goroutines.
func (e *Engine) SetFilter(f compat.StatsFilter) {
	if f != nil {
		e.filter = f
	}
}

// SetAssembler replaces the group assembler, e.g. to use deterministic ids.
func (e *Engine) SetAssembler(a group.Assembler) { e.assembler = a }

// SetAllocator replaces the cost allocator.
func (e *Engine) SetAllocator(a cost.Allocator) { e.allocator = a }

// SetClock overrides the time source used for events and metrics.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// FindMatchingLoads returns the candidates that can share a truck with req,
// the resulting load group and its cost split.
//
// Identical corridors are served from cache for the configured TTL and do
// not publish an event. Storage failures abort the call with
// model.ErrMatchingFailed; cache and publish failures are logged only.
func (e *Engine) FindMatchingLoads(ctx context.Context, req model.ShipmentRequest) (model.MatchResult, error) {
	start := e.now()
	if err := req.Validate(); err != nil {
		e.recordFailure("validate", "request", err)
		return model.MatchResult{}, err
	}

	key := cache.CorridorKey(req.Origin, req.Destination)
	if res, ok := e.cache.Get(ctx, key); ok {
		e.logger.Debugf("serving match for company %s from cache key %s", req.CompanyID, key)
		e.recordMatch(metrics.MatchRecord{
			CompanyID:     req.CompanyID,
			Industry:      string(req.Industry),
			CacheHit:      true,
			Matches:       len(res.Matches),
			GroupWeightKg: res.LoadGroup.TotalWeightKg,
			TotalCost:     cost.Total(res.CostSplit),
		}, start)
		return res, nil
	}

	candidates, err := e.corridor.FindCandidates(ctx, req.Origin, req.Destination, req.CompanyID, e.cfg.BufferMeters)
	if err != nil {
		e.recordFailure("storage", "corridor", err)
		return model.MatchResult{}, fmt.Errorf("%w: %w", model.ErrMatchingFailed, err)
	}

	matches, rej := e.filter.FilterWithStats(candidates, req.Industry, req.WeightKg, req.RevenueBracket)
	e.logger.Debugw("compatibility filter applied", map[string]any{
		"company":           req.CompanyID,
		"candidates":        len(candidates),
		"matches":           len(matches),
		"rejected_industry": rej.Industry,
		"rejected_weight":   rej.Weight,
		"rejected_bracket":  rej.Bracket,
	})

	g, participants, err := e.assembler.Assemble(matches, req)
	if err != nil {
		e.recordFailure("assemble", "group", err)
		return model.MatchResult{}, fmt.Errorf("%w: %w", model.ErrMatchingFailed, err)
	}
	if g.TotalWeightKg > e.cfg.CapacityKg {
		e.logger.Warnf("load group %s weighs %.1f kg, above the %.0f kg truck capacity", g.ID, g.TotalWeightKg, e.cfg.CapacityKg)
	}

	total := e.allocator.BaseCost(g.DistanceMeters, g.TotalWeightKg)
	splits, err := e.allocator.Allocate(participants, total, g.TotalWeightKg)
	if err != nil {
		e.recordFailure("allocate", "cost_split", err)
		return model.MatchResult{}, fmt.Errorf("%w: %w", model.ErrMatchingFailed, err)
	}

	res := model.MatchResult{Matches: matches, LoadGroup: g, CostSplit: splits}
	e.cache.Put(ctx, key, res, e.cfg.CacheTTL())
	e.publish(ctx, req.CompanyID, res)

	e.logger.Infof("matched %d shipments for company %s into group %s (cost %.2f)", len(matches), req.CompanyID, g.ID, total)
	e.recordMatch(metrics.MatchRecord{
		CompanyID:        req.CompanyID,
		Industry:         string(req.Industry),
		Candidates:       len(candidates),
		Matches:          len(matches),
		RejectedIndustry: rej.Industry,
		RejectedWeight:   rej.Weight,
		RejectedBracket:  rej.Bracket,
		GroupWeightKg:    g.TotalWeightKg,
		TotalCost:        total,
	}, start)
	return res, nil
}

func (e *Engine) publish(ctx context.Context, companyID string, res model.MatchResult) {
	ev := events.MatchEvent{
		CompanyID:   companyID,
		MatchCount:  len(res.Matches),
		LoadGroupID: res.LoadGroup.ID,
		Timestamp:   e.now().UTC(),
	}
	if err := e.publisher.Publish(ctx, events.TopicLoadMatch, ev); err != nil {
		err = fmt.Errorf("%w: %w", model.ErrPublishFailed, err)
		e.logger.Warnf("match event for group %s not published: %v", res.LoadGroup.ID, err)
		e.recordFailure("publish", events.TopicLoadMatch, err)
	}
}

func (e *Engine) recordMatch(rec metrics.MatchRecord, start time.Time) {
	rec.Time = e.now()
	rec.Duration = rec.Time.Sub(start)
	if err := e.metrics.RecordMatch(rec); err != nil {
		e.logger.Errorf("match metrics error: %v", err)
	}
}

func (e *Engine) recordFailure(stage, op string, err error) {
	fr, ok := e.metrics.(metrics.FailureRecorder)
	if !ok {
		return
	}
	if rerr := fr.RecordFailure(metrics.FailureRecord{Stage: stage, Op: op, Err: err.Error(), Time: e.now()}); rerr != nil {
		e.logger.Errorf("failure metrics error: %v", rerr)
	}
}

// Close releases the publisher and the store.
func (e *Engine) Close() error {
	var first error
	if err := e.publisher.Close(); err != nil {
		first = err
	}
	if f, ok := e.metrics.(metrics.Flusher); ok {
		if err := f.Flush(); err != nil && first == nil {
			first = err
		}
	}
	if err := e.store.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// cacheRecorder reports cache degradations to the metrics sink.
type cacheRecorder struct {
	sink metrics.MetricsSink
}

func (c cacheRecorder) RecordCacheError(op string, err error) {
	if fr, ok := c.sink.(metrics.FailureRecorder); ok {
		_ = fr.RecordFailure(metrics.FailureRecord{Stage: "cache", Op: op, Err: err.Error(), Time: time.Now()})
	}
}
