package model

import "time"

// Participant is one member of a load group as seen by the cost allocator.
type Participant struct {
	ShipmentID     string         `json:"shipment_id"`
	CompanyID      string         `json:"company_id"`
	WeightKg       float64        `json:"weight"`
	RevenueBracket RevenueBracket `json:"revenue_bracket"`
}

// LoadGroup is a set of shipments proposed to share one truck.
//
// ShipmentIDs never contains NewRequestID; Companies and TotalWeight do
// include the new request.
type LoadGroup struct {
	ID            string   `json:"id"`
	ShipmentIDs   []string `json:"shipment_ids"`
	Companies     []string `json:"companies"`
	TotalWeightKg float64  `json:"total_weight"`
	// RouteGeometry is opaque and filled in when the group is persisted.
	RouteGeometry string `json:"route_geometry,omitempty"`
	// DistanceMeters is nil when the route length is unknown.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// CostSplit is the share of the group cost paid for one shipment.
type CostSplit struct {
	ShipmentID string  `json:"shipment_id"`
	CompanyID  string  `json:"company_id"`
	Cost       float64 `json:"cost"`
}

// CompanyCost is one line of a group breakdown.
type CompanyCost struct {
	CompanyID string  `json:"company_id"`
	Cost      float64 `json:"cost"`
}

// CostBreakdown compares what a shipment pays in its group with what it
// would pay alone.
type CostBreakdown struct {
	ShipmentID        string        `json:"shipment_id"`
	TotalGroupCost    float64       `json:"total_group_cost"`
	CompanyCost       float64       `json:"company_cost"`
	IndividualCost    float64       `json:"individual_cost"`
	Savings           float64       `json:"savings"`
	SavingsPercentage string        `json:"savings_percentage"`
	Breakdown         []CompanyCost `json:"breakdown"`
}

// MatchResult is the outcome of one matching call.
type MatchResult struct {
	Matches   []ShipmentRecord `json:"matches"`
	LoadGroup LoadGroup        `json:"load_group"`
	CostSplit []CostSplit      `json:"cost_split"`
}

// PersistedGroup is a load group as stored by the storage collaborator.
type PersistedGroup struct {
	ID             string    `json:"id"`
	ShipmentIDs    []string  `json:"shipment_ids"`
	TotalWeightKg  float64   `json:"total_weight"`
	TotalCost      float64   `json:"total_cost"`
	DistanceMeters *float64  `json:"distance_meters,omitempty"`
	RouteGeometry  string    `json:"route_geometry,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// StoredSplit is a persisted cost split together with its group id.
type StoredSplit struct {
	CostSplit
	GroupID string `json:"group_id"`
}
