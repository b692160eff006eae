package events

import (
	"context"
	"time"
)

// TopicLoadMatch receives one event per computed (non-cached) match.
const TopicLoadMatch = "crs.load.match"

// MatchEvent is the payload published after a successful match.
type MatchEvent struct {
	CompanyID   string    `json:"companyId"`
	MatchCount  int       `json:"matchCount"`
	LoadGroupID string    `json:"loadGroupId"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher delivers payloads to an event bus. Implementations marshal the
// payload themselves. Delivery is best effort: callers log failures and
// carry on.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error { return nil }

// Keyed payloads provide a partition or routing key.
type Keyed interface {
	Key() string
}

// Key partitions match events by requesting company.
func (e MatchEvent) Key() string { return e.CompanyID }
