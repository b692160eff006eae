// Package seed loads shipment fixtures from YAML into a store.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/core/storage"
)

// File is the on-disk fixture layout.
type File struct {
	Shipments []model.ShipmentRecord `yaml:"shipments"`
}

// Decode reads fixtures from r. Missing ids get a random uuid and a missing
// status defaults to pending.
func Decode(r io.Reader) ([]model.ShipmentRecord, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	for i := range f.Shipments {
		s := &f.Shipments[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.Status == "" {
			s.Status = model.StatusPending
		}
		if err := s.Origin.Validate(); err != nil {
			return nil, fmt.Errorf("%w: shipment %s origin: %v", model.ErrInvalidShipment, s.ID, err)
		}
		if err := s.Destination.Validate(); err != nil {
			return nil, fmt.Errorf("%w: shipment %s destination: %v", model.ErrInvalidShipment, s.ID, err)
		}
		if err := model.ValidateWeight(s.WeightKg); err != nil {
			return nil, fmt.Errorf("shipment %s: %w", s.ID, err)
		}
	}
	return f.Shipments, nil
}

// LoadFile decodes the fixture file at path.
func LoadFile(path string) ([]model.ShipmentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Apply saves every record into store and returns how many were written.
func Apply(ctx context.Context, store storage.Store, recs []model.ShipmentRecord) (int, error) {
	for i, r := range recs {
		if err := store.SaveShipment(ctx, r); err != nil {
			return i, fmt.Errorf("seed shipment %s: %w", r.ID, err)
		}
	}
	return len(recs), nil
}
