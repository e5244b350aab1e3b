// Package geometry holds the planar approximations used to turn point records
// into map footprints. Everything here is pure and safe for concurrent use.
package geometry

import (
	"math"

	"github.com/mr1hm/zerostrike/internal/models"
)

const (
	// Approximate km per degree of latitude and of longitude at the equator.
	KmPerDegLat = 110.574
	KmPerDegLng = 111.32

	DefaultSteps = 64
	DefaultSides = 8

	earthRadiusKm = 6371.0
)

// Perturbation constants for AngularPolygon. angularStride only needs to avoid
// visible periodicity across the sides.
const (
	angularBase   = 0.76
	angularSpread = 0.28
	angularStride = 2.6180
	angularPhase  = 0.4
)

// CircleRing approximates a circle of radiusKm around center as a closed ring
// of steps+1 vertices. Longitude offsets are scaled by cos(lat) so the circle
// stays round on the map. Not valid near the poles.
func CircleRing(center models.Point, radiusKm float64, steps int) models.Ring {
	if steps <= 0 {
		steps = DefaultSteps
	}
	latScale := KmPerDegLng * math.Cos(toRad(center.Lat))

	ring := make(models.Ring, 0, steps+1)
	for i := 0; i <= steps; i++ {
		angle := float64(i) / float64(steps) * 2 * math.Pi
		ring = append(ring, models.Point{
			Lng: center.Lng + radiusKm/latScale*math.Cos(angle),
			Lat: center.Lat + radiusKm/KmPerDegLat*math.Sin(angle),
		})
	}
	return ring
}

// AngularPolygon is a CircleRing with a deterministic per-vertex radius
// perturbation, giving an irregular burn-scar outline. The last vertex repeats
// the first.
func AngularPolygon(center models.Point, radiusKm float64, sides int) models.Ring {
	if sides <= 0 {
		sides = DefaultSides
	}
	latScale := KmPerDegLng * math.Cos(toRad(center.Lat))

	ring := make(models.Ring, 0, sides+1)
	for i := 0; i < sides; i++ {
		angle := float64(i) / float64(sides) * 2 * math.Pi
		v := angularBase + angularSpread*math.Abs(math.Sin(float64(i)*angularStride+angularPhase))
		r := radiusKm * v
		ring = append(ring, models.Point{
			Lng: center.Lng + r/latScale*math.Cos(angle),
			Lat: center.Lat + r/KmPerDegLat*math.Sin(angle),
		})
	}
	return append(ring, ring[0])
}

// ProjectPoint moves origin distKm along a compass bearing (0 = north, 90 = east).
func ProjectPoint(origin models.Point, headingDeg, distKm float64) models.Point {
	h := toRad(headingDeg)
	return models.Point{
		Lng: origin.Lng + distKm/(KmPerDegLng*math.Cos(toRad(origin.Lat)))*math.Sin(h),
		Lat: origin.Lat + distKm/KmPerDegLat*math.Cos(h),
	}
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(a, b models.Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
