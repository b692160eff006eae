// Package storage defines the persistence collaborator consumed by the
// matching engine. Implementations live under infra/.
package storage

import (
	"context"

	"github.com/kilianp07/loadshare/core/model"
)

// CorridorQuerier returns pending shipments travelling along a corridor.
type CorridorQuerier interface {
	// QueryPendingWithinCorridor returns pending shipments whose origin and
	// destination both lie within bufferMeters of the corridor between
	// origin and destination, excluding shipments of excludeCompanyID.
	QueryPendingWithinCorridor(ctx context.Context, origin, destination model.Point, excludeCompanyID string, bufferMeters float64) ([]model.ShipmentRecord, error)
}

// Store is the full storage collaborator.
// Errors wrap model.ErrNotFound or model.ErrStorageUnavailable.
type Store interface {
	CorridorQuerier
	GetShipment(ctx context.Context, id string) (model.ShipmentRecord, error)
	// PersistLoadGroup stores the group with its splits and marks every
	// member shipment as matched.
	PersistLoadGroup(ctx context.Context, group model.LoadGroup, totalCost float64, splits []model.CostSplit) (model.PersistedGroup, error)
	GetGroup(ctx context.Context, id string) (model.PersistedGroup, error)
	// GetCostSplit returns the split stored for a shipment.
	GetCostSplit(ctx context.Context, shipmentID string) (model.StoredSplit, error)
	ListGroupSplits(ctx context.Context, groupID string) ([]model.StoredSplit, error)
	// SaveShipment inserts or replaces a shipment record.
	SaveShipment(ctx context.Context, s model.ShipmentRecord) error
	Close() error
}
