package matching

import (
	"context"
	"fmt"
	"slices"

	"github.com/kilianp07/loadshare/core/cost"
	"github.com/kilianp07/loadshare/core/metrics"
	"github.com/kilianp07/loadshare/core/model"
)

// BindRequest replaces the NewRequestID placeholder of a match result with
// the identifier the request received once stored as a shipment. The group
// gains shipmentID as its last member.
func BindRequest(res model.MatchResult, shipmentID string) model.MatchResult {
	out := res
	out.CostSplit = make([]model.CostSplit, len(res.CostSplit))
	for i, s := range res.CostSplit {
		if s.ShipmentID == model.NewRequestID {
			s.ShipmentID = shipmentID
		}
		out.CostSplit[i] = s
	}
	out.LoadGroup.ShipmentIDs = append(slices.Clone(res.LoadGroup.ShipmentIDs), shipmentID)
	out.LoadGroup.Companies = slices.Clone(res.LoadGroup.Companies)
	return out
}

// SaveMatchedLoadGroup persists the group with its splits and marks the
// member shipments as matched. The stored total cost is the sum of the
// splits. The route geometry, when empty, is derived by the store from the
// member shipments.
func (e *Engine) SaveMatchedLoadGroup(ctx context.Context, g model.LoadGroup, splits []model.CostSplit) (model.PersistedGroup, error) {
	if len(g.ShipmentIDs) == 0 {
		return model.PersistedGroup{}, fmt.Errorf("%w: load group %s has no shipments", model.ErrInvalidShipment, g.ID)
	}
	for _, s := range splits {
		if s.ShipmentID == model.NewRequestID {
			return model.PersistedGroup{}, fmt.Errorf("%w: split for %s must be bound to a stored shipment", model.ErrInvalidShipment, model.NewRequestID)
		}
		if !slices.Contains(g.ShipmentIDs, s.ShipmentID) {
			return model.PersistedGroup{}, fmt.Errorf("%w: split for %s is not part of group %s", model.ErrInvalidShipment, s.ShipmentID, g.ID)
		}
	}

	total := cost.Total(splits)
	pg, err := e.store.PersistLoadGroup(ctx, g, total, splits)
	if err != nil {
		e.recordFailure("storage", "persist_group", err)
		return model.PersistedGroup{}, fmt.Errorf("save load group %s: %w", g.ID, err)
	}
	e.logger.Infof("saved load group %s with %d shipments (cost %.2f)", pg.ID, len(pg.ShipmentIDs), pg.TotalCost)

	if sr, ok := e.metrics.(metrics.SavedGroupRecorder); ok {
		rec := metrics.SavedGroupRecord{
			GroupID:       pg.ID,
			Participants:  len(splits),
			TotalWeightKg: pg.TotalWeightKg,
			TotalCost:     pg.TotalCost,
			Time:          e.now(),
		}
		if err := sr.RecordSavedGroup(rec); err != nil {
			e.logger.Errorf("saved group metrics error: %v", err)
		}
	}
	return pg, nil
}
