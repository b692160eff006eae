package model

import (
	"errors"
	"math"
	"testing"
)

func validRequest() ShipmentRequest {
	return ShipmentRequest{
		Origin:         Point{Lat: 47.6062, Lng: -122.3321},
		Destination:    Point{Lat: 42.3601, Lng: -71.0589},
		WeightKg:       3500,
		CompanyID:      "acme",
		Industry:       IndustryElectronics,
		RevenueBracket: 3,
	}
}

func TestShipmentRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ShipmentRequest)
		ok     bool
	}{
		{"valid", func(*ShipmentRequest) {}, true},
		{"zero weight", func(r *ShipmentRequest) { r.WeightKg = 0 }, true},
		{"negative weight", func(r *ShipmentRequest) { r.WeightKg = -1 }, false},
		{"nan weight", func(r *ShipmentRequest) { r.WeightKg = math.NaN() }, false},
		{"bad origin lat", func(r *ShipmentRequest) { r.Origin.Lat = 91 }, false},
		{"bad destination lng", func(r *ShipmentRequest) { r.Destination.Lng = -181 }, false},
		{"inf coordinate", func(r *ShipmentRequest) { r.Origin.Lng = math.Inf(1) }, false},
		{"missing company", func(r *ShipmentRequest) { r.CompanyID = "" }, false},
		{"missing industry", func(r *ShipmentRequest) { r.Industry = "" }, false},
		{"bracket zero", func(r *ShipmentRequest) { r.RevenueBracket = 0 }, false},
		{"bracket six", func(r *ShipmentRequest) { r.RevenueBracket = 6 }, false},
		{"unknown industry", func(r *ShipmentRequest) { r.Industry = "textiles" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("expected error")
				}
				if !errors.Is(err, ErrInvalidShipment) {
					t.Fatalf("expected ErrInvalidShipment, got %v", err)
				}
			}
		})
	}
}

func TestRequestParticipantUsesPlaceholder(t *testing.T) {
	p := validRequest().Participant()
	if p.ShipmentID != NewRequestID {
		t.Fatalf("expected placeholder id, got %s", p.ShipmentID)
	}
	if p.CompanyID != "acme" || p.WeightKg != 3500 || p.RevenueBracket != 3 {
		t.Fatalf("unexpected participant %+v", p)
	}
}

func TestIndustryKnown(t *testing.T) {
	if !IndustryRawMaterials.Known() {
		t.Fatalf("raw_materials should be known")
	}
	if Industry("textiles").Known() {
		t.Fatalf("textiles should not be known")
	}
}

func TestLineWKT(t *testing.T) {
	got := LineWKT(Point{Lat: 37.7749, Lng: -122.4194}, Point{Lat: 40.7128, Lng: -74.006})
	want := "LINESTRING(-122.4194 37.7749, -74.006 40.7128)"
	if got != want {
		t.Fatalf("expected %s got %s", want, got)
	}
}
