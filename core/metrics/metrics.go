package metrics

import "time"

// MatchRecord summarizes one FindMatchingLoads call.
type MatchRecord struct {
	CompanyID        string
	Industry         string
	CacheHit         bool
	Candidates       int
	Matches          int
	RejectedIndustry int
	RejectedWeight   int
	RejectedBracket  int
	GroupWeightKg    float64
	TotalCost        float64
	Duration         time.Duration
	Time             time.Time
}

// MetricsSink records matching outcomes for observability purposes.
type MetricsSink interface {
	RecordMatch(rec MatchRecord) error
}

// FailureRecord describes a failed call or a degraded side channel.
type FailureRecord struct {
	// Stage is one of "validate", "storage", "assemble", "allocate", "cache"
	// and "publish".
	Stage string
	// Op narrows the stage, e.g. the cache operation or the topic.
	Op   string
	Err  string
	Time time.Time
}

// FailureRecorder is implemented by sinks able to count failures.
type FailureRecorder interface {
	RecordFailure(rec FailureRecord) error
}

// SavedGroupRecord describes a persisted load group.
type SavedGroupRecord struct {
	GroupID       string
	Participants  int
	TotalWeightKg float64
	TotalCost     float64
	Time          time.Time
}

// SavedGroupRecorder records persisted groups.
type SavedGroupRecorder interface {
	RecordSavedGroup(rec SavedGroupRecord) error
}

// Flusher is implemented by sinks that buffer or push on demand.
type Flusher interface {
	Flush() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordMatch(MatchRecord) error           { return nil }
func (NopSink) RecordFailure(FailureRecord) error       { return nil }
func (NopSink) RecordSavedGroup(SavedGroupRecord) error { return nil }
