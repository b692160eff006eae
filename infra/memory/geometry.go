package memory

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/kilianp07/loadshare/core/model"
)

const earthRadiusMeters = 6371008.8

// projection maps coordinates onto a local plane in meters using an
// equirectangular projection centred on the reference latitude. Good enough
// for corridor buffers of a few tens of kilometres.
type projection struct {
	cosLat float64
}

func newProjection(a, b model.Point) projection {
	mid := (a.Lat + b.Lat) / 2
	return projection{cosLat: math.Cos(mid * math.Pi / 180)}
}

func (p projection) vec(pt model.Point) r2.Vec {
	return r2.Vec{
		X: earthRadiusMeters * pt.Lng * math.Pi / 180 * p.cosLat,
		Y: earthRadiusMeters * pt.Lat * math.Pi / 180,
	}
}

// distanceToSegment returns the distance in meters between pt and the
// segment from a to b.
func distanceToSegment(pt, a, b model.Point) float64 {
	proj := newProjection(a, b)
	p, va, vb := proj.vec(pt), proj.vec(a), proj.vec(b)
	ab := r2.Sub(vb, va)
	denom := r2.Dot(ab, ab)
	if denom == 0 {
		return r2.Norm(r2.Sub(p, va))
	}
	t := r2.Dot(r2.Sub(p, va), ab) / denom
	t = math.Max(0, math.Min(1, t))
	closest := r2.Add(va, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p, closest))
}

// withinCorridor reports whether both ends of s lie within buffer meters of
// the corridor from origin to destination.
func withinCorridor(s model.ShipmentRecord, origin, destination model.Point, buffer float64) bool {
	return distanceToSegment(s.Origin, origin, destination) <= buffer &&
		distanceToSegment(s.Destination, origin, destination) <= buffer
}

// segmentLength is the projected length of the segment in meters.
func segmentLength(a, b model.Point) float64 {
	proj := newProjection(a, b)
	return r2.Norm(r2.Sub(proj.vec(b), proj.vec(a)))
}
