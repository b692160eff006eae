// Package cost prices a load group and splits the price among its
// participants.
//
// The allocation combines the share of the carried weight with a revenue
// bracket factor so that smaller companies receive a discount and larger
// ones pay a premium. All monetary values are rounded half-up to cents.
package cost

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/loadshare/core/model"
)

const (
	// MetersPerMile is the conversion used for distance pricing.
	MetersPerMile = 1609.0
	// RatePerMile is the distance rate in dollars.
	RatePerMile = 1.50
	// RatePerKg is the weight rate in dollars.
	RatePerKg = 0.10
	// DefaultDistanceMiles is used when the route length is unknown.
	DefaultDistanceMiles = 500.0
	// IndividualPremium represents lost economies of scale for a shipment
	// travelling alone.
	IndividualPremium = 1.25
	// WeightShare and BracketShare split the combined weighting factor.
	WeightShare  = 0.7
	BracketShare = 0.3
)

var bracketFactors = map[model.RevenueBracket]float64{
	1: 0.85,
	2: 0.90,
	3: 1.00,
	4: 1.10,
	5: 1.20,
}

// BracketFactor returns the pricing factor of a revenue bracket, 1.0 for
// unmapped brackets.
func BracketFactor(b model.RevenueBracket) float64 {
	if f, ok := bracketFactors[b]; ok {
		return f
	}
	return 1.0
}

// Allocator prices routes and distributes group costs.
type Allocator struct {
	RatePerMile          float64
	RatePerKg            float64
	DefaultDistanceMiles float64
	IndividualPremium    float64
	WeightShare          float64
	BracketShare         float64
}

// NewAllocator returns an Allocator using the policy rates.
func NewAllocator() Allocator {
	return Allocator{
		RatePerMile:          RatePerMile,
		RatePerKg:            RatePerKg,
		DefaultDistanceMiles: DefaultDistanceMiles,
		IndividualPremium:    IndividualPremium,
		WeightShare:          WeightShare,
		BracketShare:         BracketShare,
	}
}

// Miles converts a route length to miles, falling back to the default
// distance when the length is unknown.
func (a Allocator) Miles(distanceMeters *float64) float64 {
	if distanceMeters == nil || math.IsNaN(*distanceMeters) || *distanceMeters < 0 {
		return a.DefaultDistanceMiles
	}
	return *distanceMeters / MetersPerMile
}

// BaseCost is the undiscounted cost of moving totalWeightKg over the route.
// A nil distance uses the default distance instead of failing.
func (a Allocator) BaseCost(distanceMeters *float64, totalWeightKg float64) float64 {
	return a.Miles(distanceMeters)*a.RatePerMile + totalWeightKg*a.RatePerKg
}

// IndividualCost is what a single shipment would pay travelling alone.
func (a Allocator) IndividualCost(distanceMeters *float64, weightKg float64) float64 {
	return a.BaseCost(distanceMeters, weightKg) * a.IndividualPremium
}

// Allocate splits totalCost among the participants. A non-positive
// totalWeight is recomputed from the participants.
func (a Allocator) Allocate(participants []model.Participant, totalCost, totalWeight float64) ([]model.CostSplit, error) {
	if math.IsNaN(totalCost) || math.IsInf(totalCost, 0) || totalCost < 0 {
		return nil, fmt.Errorf("%w: total cost %v", model.ErrInvalidShipment, totalCost)
	}
	if len(participants) == 0 {
		return []model.CostSplit{}, nil
	}
	if totalWeight <= 0 {
		totalWeight = 0
		for _, p := range participants {
			totalWeight += p.WeightKg
		}
	}

	weights := make([]float64, len(participants))
	var sum float64
	for i, p := range participants {
		if err := model.ValidateWeight(p.WeightKg); err != nil {
			return nil, fmt.Errorf("participant %s: %w", p.ShipmentID, err)
		}
		proportion := 0.0
		if totalWeight > 0 {
			proportion = p.WeightKg / totalWeight
		}
		weights[i] = proportion*a.WeightShare + BracketFactor(p.RevenueBracket)*a.BracketShare
		sum += weights[i]
	}

	splits := make([]model.CostSplit, len(participants))
	for i, p := range participants {
		share := 0.0
		if sum > 0 {
			share = totalCost * weights[i] / sum
		}
		splits[i] = model.CostSplit{
			ShipmentID: p.ShipmentID,
			CompanyID:  p.CompanyID,
			Cost:       RoundCents(share),
		}
	}
	return splits, nil
}

// Savings returns individual minus shared and the savings percentage as
// text with two decimals. A zero individual cost yields "0.00".
func Savings(individual, shared float64) (float64, string) {
	ind := decimal.NewFromFloat(individual)
	diff := ind.Sub(decimal.NewFromFloat(shared))
	if ind.IsZero() {
		return diff.InexactFloat64(), "0.00"
	}
	pct := diff.Mul(decimal.NewFromInt(100)).Div(ind)
	return diff.InexactFloat64(), pct.StringFixed(2)
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Total sums the costs of a split.
func Total(splits []model.CostSplit) float64 {
	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(decimal.NewFromFloat(s.Cost))
	}
	return sum.InexactFloat64()
}
