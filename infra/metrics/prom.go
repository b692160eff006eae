package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/loadshare/core/metrics"
	"github.com/kilianp07/loadshare/core/model"
)

var (
	_ coremetrics.FailureRecorder    = (*PromSink)(nil)
	_ coremetrics.SavedGroupRecorder = (*PromSink)(nil)
	_ coremetrics.Flusher            = (*PromSink)(nil)
)

// PromConfig configures PromSink. When PushURL is set the collected metrics
// are pushed to a Pushgateway on Flush, which suits one-shot CLI runs.
type PromConfig struct {
	Namespace string `json:"namespace"`
	PushURL   string `json:"push_url"`
	Job       string `json:"job"`
}

// PromSink records matching outcomes in Prometheus metrics.
type PromSink struct {
	matches    *prometheus.CounterVec
	candidates prometheus.Histogram
	rejections *prometheus.CounterVec
	groupKg    prometheus.Histogram
	cost       prometheus.Histogram
	latency    *prometheus.HistogramVec
	failures   *prometheus.CounterVec
	saved      prometheus.Counter
	savedCost  prometheus.Counter

	pusher *push.Pusher
}

// NewPromSink registers matching metrics on the default Prometheus registerer.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg PromConfig, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = "crs"
	}
	s := &PromSink{
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "match_requests_total",
			Help:      "Match requests by outcome",
		}, []string{"industry", "cache_hit", "matched"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "match_candidates",
			Help:      "Corridor candidates per computed request",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "match_rejections_total",
			Help:      "Candidates rejected by compatibility rule",
		}, []string{"rule"}),
		groupKg: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "group_weight_kg",
			Help:      "Combined weight of assembled groups",
			Buckets:   prometheus.LinearBuckets(2000, 2000, 10),
		}),
		cost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "group_cost",
			Help:      "Base cost of assembled groups",
			Buckets:   prometheus.ExponentialBuckets(100, 2, 10),
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "match_duration_seconds",
			Help:      "Time spent in FindMatchingLoads",
			Buckets:   prometheus.DefBuckets,
		}, []string{"cache_hit"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "failures_total",
			Help:      "Failed or degraded operations by stage",
		}, []string{"stage", "op"}),
		saved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "groups_saved_total",
			Help:      "Persisted load groups",
		}),
		savedCost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "groups_saved_cost_total",
			Help:      "Sum of total cost over persisted load groups",
		}),
	}

	var err error
	if s.matches, err = register(reg, s.matches); err != nil {
		return nil, err
	}
	if s.candidates, err = register(reg, s.candidates); err != nil {
		return nil, err
	}
	if s.rejections, err = register(reg, s.rejections); err != nil {
		return nil, err
	}
	if s.groupKg, err = register(reg, s.groupKg); err != nil {
		return nil, err
	}
	if s.cost, err = register(reg, s.cost); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, s.failures); err != nil {
		return nil, err
	}
	if s.saved, err = register(reg, s.saved); err != nil {
		return nil, err
	}
	if s.savedCost, err = register(reg, s.savedCost); err != nil {
		return nil, err
	}

	if cfg.PushURL != "" {
		job := cfg.Job
		if job == "" {
			job = "loadshare"
		}
		g, ok := reg.(prometheus.Gatherer)
		if !ok {
			return nil, errors.New("push requires a registerer that is also a gatherer")
		}
		s.pusher = push.New(cfg.PushURL, job).Gatherer(g)
	}
	return s, nil
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// industryLabel keeps the label set to the known industries plus "other".
func industryLabel(industry string) string {
	if model.Industry(industry).Known() {
		return industry
	}
	return "other"
}

// RecordMatch updates request, rejection and group metrics.
func (s *PromSink) RecordMatch(rec coremetrics.MatchRecord) error {
	hit := strconv.FormatBool(rec.CacheHit)
	s.matches.WithLabelValues(industryLabel(rec.Industry), hit, strconv.FormatBool(rec.Matches > 0)).Inc()
	s.latency.WithLabelValues(hit).Observe(rec.Duration.Seconds())
	if rec.CacheHit {
		return nil
	}
	s.candidates.Observe(float64(rec.Candidates))
	s.rejections.WithLabelValues("industry").Add(float64(rec.RejectedIndustry))
	s.rejections.WithLabelValues("weight").Add(float64(rec.RejectedWeight))
	s.rejections.WithLabelValues("bracket").Add(float64(rec.RejectedBracket))
	s.groupKg.Observe(rec.GroupWeightKg)
	s.cost.Observe(rec.TotalCost)
	return nil
}

// RecordFailure counts a failure for its stage.
func (s *PromSink) RecordFailure(rec coremetrics.FailureRecord) error {
	s.failures.WithLabelValues(rec.Stage, rec.Op).Inc()
	return nil
}

// RecordSavedGroup counts a persisted group and its cost.
func (s *PromSink) RecordSavedGroup(rec coremetrics.SavedGroupRecord) error {
	s.saved.Inc()
	if rec.TotalCost > 0 {
		s.savedCost.Add(rec.TotalCost)
	}
	return nil
}

// Flush pushes the gathered metrics when a Pushgateway is configured.
func (s *PromSink) Flush() error {
	if s.pusher == nil {
		return nil
	}
	return s.pusher.Push()
}
