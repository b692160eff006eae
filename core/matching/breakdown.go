package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/loadshare/core/cost"
	"github.com/kilianp07/loadshare/core/model"
)

// GetCostBreakdown compares what shipmentID pays in its saved group with
// what it would pay travelling alone over the same route.
//
// A shipment without a stored split yields a zero-valued breakdown and no
// error.
func (e *Engine) GetCostBreakdown(ctx context.Context, shipmentID string) (model.CostBreakdown, error) {
	if shipmentID == "" {
		return model.CostBreakdown{}, fmt.Errorf("%w: shipment id is required", model.ErrInvalidShipment)
	}
	split, err := e.store.GetCostSplit(ctx, shipmentID)
	if errors.Is(err, model.ErrNotFound) {
		e.logger.Debugf("no cost split stored for shipment %s", shipmentID)
		return emptyBreakdown(shipmentID), nil
	}
	if err != nil {
		e.recordFailure("storage", "cost_split", err)
		return model.CostBreakdown{}, fmt.Errorf("breakdown %s: %w", shipmentID, err)
	}

	grp, err := e.store.GetGroup(ctx, split.GroupID)
	if err != nil {
		e.recordFailure("storage", "group", err)
		return model.CostBreakdown{}, fmt.Errorf("breakdown %s: group %s: %w", shipmentID, split.GroupID, err)
	}
	shipment, err := e.store.GetShipment(ctx, shipmentID)
	if err != nil {
		e.recordFailure("storage", "shipment", err)
		return model.CostBreakdown{}, fmt.Errorf("breakdown %s: %w", shipmentID, err)
	}
	groupSplits, err := e.store.ListGroupSplits(ctx, split.GroupID)
	if err != nil {
		e.recordFailure("storage", "group_splits", err)
		return model.CostBreakdown{}, fmt.Errorf("breakdown %s: group %s: %w", shipmentID, split.GroupID, err)
	}

	individual := cost.RoundCents(e.allocator.IndividualCost(grp.DistanceMeters, shipment.WeightKg))
	savings, pct := cost.Savings(individual, split.Cost)

	lines := make([]model.CompanyCost, 0, len(groupSplits))
	for _, s := range groupSplits {
		lines = append(lines, model.CompanyCost{CompanyID: s.CompanyID, Cost: s.Cost})
	}
	return model.CostBreakdown{
		ShipmentID:        shipmentID,
		TotalGroupCost:    grp.TotalCost,
		CompanyCost:       split.Cost,
		IndividualCost:    individual,
		Savings:           cost.RoundCents(savings),
		SavingsPercentage: pct,
		Breakdown:         lines,
	}, nil
}

func emptyBreakdown(shipmentID string) model.CostBreakdown {
	return model.CostBreakdown{
		ShipmentID:        shipmentID,
		SavingsPercentage: "0.00",
		Breakdown:         []model.CompanyCost{},
	}
}
