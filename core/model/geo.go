package model

import (
	"fmt"
	"math"
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Validate checks that the point is a finite coordinate inside the WGS84 range.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return fmt.Errorf("coordinate is not finite")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude %v out of range", p.Lng)
	}
	return nil
}

// WKT returns the point in well-known-text form (lng first).
func (p Point) WKT() string {
	return fmt.Sprintf("POINT(%v %v)", p.Lng, p.Lat)
}

// LineWKT returns the straight corridor between two points as a WKT linestring.
func LineWKT(from, to Point) string {
	return fmt.Sprintf("LINESTRING(%v %v, %v %v)", from.Lng, from.Lat, to.Lng, to.Lat)
}
