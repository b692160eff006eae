// Package memory provides an in-process storage backend, used by the CLI
// without a database and by tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps shipments, groups and splits in maps guarded by a RWMutex.
// Query results follow insertion order.
type Store struct {
	mu          sync.RWMutex
	shipments   map[string]model.ShipmentRecord
	order       []string
	groups      map[string]model.PersistedGroup
	splits      map[string]model.StoredSplit
	groupSplits map[string][]string
	now         func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		shipments:   make(map[string]model.ShipmentRecord),
		groups:      make(map[string]model.PersistedGroup),
		splits:      make(map[string]model.StoredSplit),
		groupSplits: make(map[string][]string),
		now:         time.Now,
	}
}

func unavailable(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
	}
	return nil
}

// SaveShipment inserts or replaces s.
func (s *Store) SaveShipment(ctx context.Context, rec model.ShipmentRecord) error {
	if err := unavailable(ctx); err != nil {
		return err
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: shipment id is required", model.ErrInvalidShipment)
	}
	if rec.Status == "" {
		rec.Status = model.StatusPending
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shipments[rec.ID]; !ok {
		s.order = append(s.order, rec.ID)
	}
	s.shipments[rec.ID] = rec
	return nil
}

// QueryPendingWithinCorridor scans every shipment.
func (s *Store) QueryPendingWithinCorridor(ctx context.Context, origin, destination model.Point, excludeCompanyID string, bufferMeters float64) ([]model.ShipmentRecord, error) {
	if err := unavailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.ShipmentRecord, 0)
	for _, id := range s.order {
		rec := s.shipments[id]
		if rec.Status != model.StatusPending || rec.CompanyID == excludeCompanyID {
			continue
		}
		if withinCorridor(rec, origin, destination, bufferMeters) {
			res = append(res, rec)
		}
	}
	return res, nil
}

// GetShipment returns the shipment with the given id.
func (s *Store) GetShipment(ctx context.Context, id string) (model.ShipmentRecord, error) {
	if err := unavailable(ctx); err != nil {
		return model.ShipmentRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.shipments[id]
	if !ok {
		return model.ShipmentRecord{}, fmt.Errorf("shipment %s: %w", id, model.ErrNotFound)
	}
	return rec, nil
}

// PersistLoadGroup stores the group and its splits and marks the members as
// matched. Every member must exist and still be pending, and no split may
// already be stored for its shipment. An empty route geometry becomes the line
// joining the first member's origin and destination, and an unknown
// distance is taken from that line.
func (s *Store) PersistLoadGroup(ctx context.Context, g model.LoadGroup, totalCost float64, splits []model.CostSplit) (model.PersistedGroup, error) {
	if err := unavailable(ctx); err != nil {
		return model.PersistedGroup{}, err
	}
	if g.ID == "" {
		return model.PersistedGroup{}, fmt.Errorf("%w: group id is required", model.ErrInvalidShipment)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[g.ID]; ok {
		return model.PersistedGroup{}, fmt.Errorf("%w: group %s already stored", model.ErrInvalidShipment, g.ID)
	}
	members := make([]model.ShipmentRecord, 0, len(g.ShipmentIDs))
	for _, id := range g.ShipmentIDs {
		rec, ok := s.shipments[id]
		if !ok {
			return model.PersistedGroup{}, fmt.Errorf("shipment %s: %w", id, model.ErrNotFound)
		}
		if rec.Status != model.StatusPending {
			return model.PersistedGroup{}, fmt.Errorf("%w: shipment %s is %s", model.ErrInvalidShipment, id, rec.Status)
		}
		members = append(members, rec)
	}
	for _, sp := range splits {
		if prev, ok := s.splits[sp.ShipmentID]; ok {
			return model.PersistedGroup{}, fmt.Errorf("%w: shipment %s already split in group %s", model.ErrInvalidShipment, sp.ShipmentID, prev.GroupID)
		}
	}

	pg := model.PersistedGroup{
		ID:             g.ID,
		ShipmentIDs:    append([]string(nil), g.ShipmentIDs...),
		TotalWeightKg:  g.TotalWeightKg,
		TotalCost:      totalCost,
		DistanceMeters: g.DistanceMeters,
		RouteGeometry:  g.RouteGeometry,
		CreatedAt:      s.now().UTC(),
	}
	if len(members) > 0 {
		first := members[0]
		if pg.RouteGeometry == "" {
			pg.RouteGeometry = model.LineWKT(first.Origin, first.Destination)
		}
		if pg.DistanceMeters == nil {
			d := segmentLength(first.Origin, first.Destination)
			pg.DistanceMeters = &d
		}
	}

	s.groups[pg.ID] = pg
	ids := make([]string, 0, len(splits))
	for _, sp := range splits {
		s.splits[sp.ShipmentID] = model.StoredSplit{CostSplit: sp, GroupID: pg.ID}
		ids = append(ids, sp.ShipmentID)
	}
	s.groupSplits[pg.ID] = ids
	for _, rec := range members {
		rec.Status = model.StatusMatched
		s.shipments[rec.ID] = rec
	}
	return pg, nil
}

// GetGroup returns a persisted group.
func (s *Store) GetGroup(ctx context.Context, id string) (model.PersistedGroup, error) {
	if err := unavailable(ctx); err != nil {
		return model.PersistedGroup{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[id]
	if !ok {
		return model.PersistedGroup{}, fmt.Errorf("group %s: %w", id, model.ErrNotFound)
	}
	return g, nil
}

// GetCostSplit returns the split stored for shipmentID.
func (s *Store) GetCostSplit(ctx context.Context, shipmentID string) (model.StoredSplit, error) {
	if err := unavailable(ctx); err != nil {
		return model.StoredSplit{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.splits[shipmentID]
	if !ok {
		return model.StoredSplit{}, fmt.Errorf("cost split for %s: %w", shipmentID, model.ErrNotFound)
	}
	return sp, nil
}

// ListGroupSplits returns the splits of a group in insertion order.
func (s *Store) ListGroupSplits(ctx context.Context, groupID string) ([]model.StoredSplit, error) {
	if err := unavailable(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.groupSplits[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, model.ErrNotFound)
	}
	out := make([]model.StoredSplit, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.splits[id])
	}
	return out, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
