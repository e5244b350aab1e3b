// Package geojson builds the map layers served to the dashboard: threat
// footprints, drone coverage, trajectories, land risk and collisions.
package geojson

import "github.com/mr1hm/zerostrike/internal/models"

const (
	TypeFeatureCollection = "FeatureCollection"
	TypeFeature           = "Feature"
	TypePolygon           = "Polygon"
	TypeLineString        = "LineString"
	TypePoint             = "Point"
)

// Position is a [lng, lat] pair.
type Position [2]float64

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds Position, []Position or [][]Position depending on Type.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{
		Type:     TypeFeatureCollection,
		Features: features,
	}
}

func NewFeature(g Geometry, props map[string]any) Feature {
	return Feature{
		Type:       TypeFeature,
		Geometry:   g,
		Properties: props,
	}
}

func NewPolygon(ring models.Ring) Geometry {
	return Geometry{
		Type:        TypePolygon,
		Coordinates: [][]Position{positions(ring)},
	}
}

func NewLineString(points ...models.Point) Geometry {
	return Geometry{
		Type:        TypeLineString,
		Coordinates: positions(points),
	}
}

func NewPoint(p models.Point) Geometry {
	return Geometry{
		Type:        TypePoint,
		Coordinates: Position{p.Lng, p.Lat},
	}
}

// OuterRing returns the exterior ring of a Polygon built by NewPolygon, or nil.
func (g Geometry) OuterRing() models.Ring {
	rings, ok := g.Coordinates.([][]Position)
	if !ok || len(rings) == 0 {
		return nil
	}
	ring := make(models.Ring, len(rings[0]))
	for i, p := range rings[0] {
		ring[i] = models.Point{Lng: p[0], Lat: p[1]}
	}
	return ring
}

func positions(points []models.Point) []Position {
	out := make([]Position, len(points))
	for i, p := range points {
		out[i] = Position{p.Lng, p.Lat}
	}
	return out
}
