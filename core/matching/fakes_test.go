package matching

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/loadshare/core/events"
	"github.com/kilianp07/loadshare/core/metrics"
	"github.com/kilianp07/loadshare/core/model"
)

type fakeStore struct {
	mu         sync.Mutex
	candidates []model.ShipmentRecord
	queryErr   error
	queries    int
	shipments  map[string]model.ShipmentRecord
	groups     map[string]model.PersistedGroup
	splits     map[string]model.StoredSplit
	persisted  []float64
	closed     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		shipments: map[string]model.ShipmentRecord{},
		groups:    map[string]model.PersistedGroup{},
		splits:    map[string]model.StoredSplit{},
	}
}

func (f *fakeStore) QueryPendingWithinCorridor(context.Context, model.Point, model.Point, string, float64) ([]model.ShipmentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	return f.candidates, f.queryErr
}

func (f *fakeStore) GetShipment(_ context.Context, id string) (model.ShipmentRecord, error) {
	s, ok := f.shipments[id]
	if !ok {
		return model.ShipmentRecord{}, fmt.Errorf("shipment %s: %w", id, model.ErrNotFound)
	}
	return s, nil
}

func (f *fakeStore) PersistLoadGroup(_ context.Context, g model.LoadGroup, total float64, splits []model.CostSplit) (model.PersistedGroup, error) {
	f.persisted = append(f.persisted, total)
	pg := model.PersistedGroup{
		ID:             g.ID,
		ShipmentIDs:    g.ShipmentIDs,
		TotalWeightKg:  g.TotalWeightKg,
		TotalCost:      total,
		DistanceMeters: g.DistanceMeters,
		CreatedAt:      time.Now(),
	}
	f.groups[g.ID] = pg
	for _, s := range splits {
		f.splits[s.ShipmentID] = model.StoredSplit{CostSplit: s, GroupID: g.ID}
	}
	return pg, nil
}

func (f *fakeStore) GetGroup(_ context.Context, id string) (model.PersistedGroup, error) {
	g, ok := f.groups[id]
	if !ok {
		return model.PersistedGroup{}, fmt.Errorf("group %s: %w", id, model.ErrNotFound)
	}
	return g, nil
}

func (f *fakeStore) GetCostSplit(_ context.Context, id string) (model.StoredSplit, error) {
	s, ok := f.splits[id]
	if !ok {
		return model.StoredSplit{}, fmt.Errorf("split %s: %w", id, model.ErrNotFound)
	}
	return s, nil
}

func (f *fakeStore) ListGroupSplits(_ context.Context, groupID string) ([]model.StoredSplit, error) {
	var out []model.StoredSplit
	for _, id := range f.groups[groupID].ShipmentIDs {
		if s, ok := f.splits[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveShipment(_ context.Context, s model.ShipmentRecord) error {
	f.shipments[s.ID] = s
	return nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	topics []string
	events []events.MatchEvent
}

func (p *fakePublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	if ev, ok := payload.(events.MatchEvent); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeSink struct {
	matches  []metrics.MatchRecord
	failures []metrics.FailureRecord
	saved    []metrics.SavedGroupRecord
	flushed  bool
}

func (s *fakeSink) RecordMatch(r metrics.MatchRecord) error {
	s.matches = append(s.matches, r)
	return nil
}

func (s *fakeSink) RecordFailure(r metrics.FailureRecord) error {
	s.failures = append(s.failures, r)
	return nil
}

func (s *fakeSink) RecordSavedGroup(r metrics.SavedGroupRecord) error {
	s.saved = append(s.saved, r)
	return nil
}

func (s *fakeSink) Flush() error {
	s.flushed = true
	return nil
}

func (s *fakeSink) stages() []string {
	out := make([]string, 0, len(s.failures))
	for _, f := range s.failures {
		out = append(out, f.Stage)
	}
	return out
}

type mapBackend struct {
	data   map[string]string
	getErr error
	putErr error
}

func (m *mapBackend) Get(_ context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapBackend) Put(_ context.Context, key, value string, _ time.Duration) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = value
	return nil
}

type captureLogger struct {
	warns []string
}

func (c *captureLogger) Debugf(string, ...any)         {}
func (c *captureLogger) Debugw(string, map[string]any) {}
func (c *captureLogger) Infof(string, ...any)          {}
func (c *captureLogger) Warnf(format string, args ...any) {
	c.warns = append(c.warns, fmt.Sprintf(format, args...))
}
func (c *captureLogger) Errorf(string, ...any) {}
