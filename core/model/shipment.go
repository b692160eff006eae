package model

import (
	"fmt"
	"math"
)

// Industry classifies the goods carried by a shipment.
type Industry string

const (
	IndustryFood          Industry = "food"
	IndustryHazardous     Industry = "hazardous"
	IndustryConsumerGoods Industry = "consumer_goods"
	IndustryElectronics   Industry = "electronics"
	IndustryAutomotive    Industry = "automotive"
	IndustryIndustrial    Industry = "industrial"
	IndustryRawMaterials  Industry = "raw_materials"
)

// Known reports whether the industry is one of the enumerated values.
func (i Industry) Known() bool {
	switch i {
	case IndustryFood, IndustryHazardous, IndustryConsumerGoods, IndustryElectronics,
		IndustryAutomotive, IndustryIndustrial, IndustryRawMaterials:
		return true
	default:
		return false
	}
}

// ShipmentStatus is the lifecycle state of a persisted shipment.
type ShipmentStatus string

const (
	StatusPending   ShipmentStatus = "pending"
	StatusMatched   ShipmentStatus = "matched"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusDelivered ShipmentStatus = "delivered"
	StatusCancelled ShipmentStatus = "cancelled"
)

// RevenueBracket is an ordinal 1-5 classification of company size.
type RevenueBracket int

const (
	MinRevenueBracket RevenueBracket = 1
	MaxRevenueBracket RevenueBracket = 5
)

// Valid reports whether the bracket is within 1-5.
func (b RevenueBracket) Valid() bool {
	return b >= MinRevenueBracket && b <= MaxRevenueBracket
}

// NewRequestID is the placeholder shipment id used for a request that is not
// persisted yet.
const NewRequestID = "new-request"

// ShipmentRequest is the inbound ask of one matching call.
type ShipmentRequest struct {
	Origin         Point          `json:"origin" yaml:"origin"`
	Destination    Point          `json:"destination" yaml:"destination"`
	WeightKg       float64        `json:"weight" yaml:"weight"`
	CompanyID      string         `json:"company_id" yaml:"company_id"`
	Industry       Industry       `json:"industry" yaml:"industry"`
	RevenueBracket RevenueBracket `json:"revenue_bracket" yaml:"revenue_bracket"`
}

// Validate rejects malformed requests. All errors wrap ErrInvalidShipment.
func (r ShipmentRequest) Validate() error {
	if err := r.Origin.Validate(); err != nil {
		return fmt.Errorf("%w: origin: %v", ErrInvalidShipment, err)
	}
	if err := r.Destination.Validate(); err != nil {
		return fmt.Errorf("%w: destination: %v", ErrInvalidShipment, err)
	}
	if err := ValidateWeight(r.WeightKg); err != nil {
		return err
	}
	if r.CompanyID == "" {
		return fmt.Errorf("%w: company id is required", ErrInvalidShipment)
	}
	if r.Industry == "" {
		return fmt.Errorf("%w: industry is required", ErrInvalidShipment)
	}
	if !r.RevenueBracket.Valid() {
		return fmt.Errorf("%w: revenue bracket %d out of range", ErrInvalidShipment, r.RevenueBracket)
	}
	return nil
}

// Participant returns the request as an allocation participant under the
// placeholder id.
func (r ShipmentRequest) Participant() Participant {
	return Participant{
		ShipmentID:     NewRequestID,
		CompanyID:      r.CompanyID,
		WeightKg:       r.WeightKg,
		RevenueBracket: r.RevenueBracket,
	}
}

// ValidateWeight rejects negative and non-finite weights.
func ValidateWeight(kg float64) error {
	if math.IsNaN(kg) || math.IsInf(kg, 0) {
		return fmt.Errorf("%w: weight is not finite", ErrInvalidShipment)
	}
	if kg < 0 {
		return fmt.Errorf("%w: negative weight %v", ErrInvalidShipment, kg)
	}
	return nil
}

// ShipmentRecord is a shipment owned by the storage collaborator.
type ShipmentRecord struct {
	ID             string         `json:"id" yaml:"id"`
	Origin         Point          `json:"origin" yaml:"origin"`
	Destination    Point          `json:"destination" yaml:"destination"`
	WeightKg       float64        `json:"weight" yaml:"weight"`
	CompanyID      string         `json:"company_id" yaml:"company_id"`
	Industry       Industry       `json:"industry" yaml:"industry"`
	RevenueBracket RevenueBracket `json:"revenue_bracket" yaml:"revenue_bracket"`
	Status         ShipmentStatus `json:"status" yaml:"status"`
}

// Participant returns the record as an allocation participant.
func (s ShipmentRecord) Participant() Participant {
	return Participant{
		ShipmentID:     s.ID,
		CompanyID:      s.CompanyID,
		WeightKg:       s.WeightKg,
		RevenueBracket: s.RevenueBracket,
	}
}
