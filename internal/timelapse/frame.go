package timelapse

import (
	"github.com/mr1hm/zerostrike/internal/geojson"
	"github.com/mr1hm/zerostrike/internal/geometry"
	"github.com/mr1hm/zerostrike/internal/models"
)

type Frame struct {
	Scenario string                    `json:"scenario"`
	Progress float64                   `json:"progress"`
	Hectares int                       `json:"hectares"`
	Features geojson.FeatureCollection `json:"features"`
}

// BuildFrame renders the scenario at progress: a burn-scar polygon for every
// ignited zone and a point for every hotspot revealed so far. Zones that have
// not ignited are left out.
func BuildFrame(s Scenario, progress float64) Frame {
	progress = clamp01(progress)

	features := make([]geojson.Feature, 0, len(s.Zones)+len(s.Hotspots))
	for _, z := range s.Zones {
		growth := ZoneGrowthFraction(progress, z.Threshold)
		if growth <= 0 {
			continue
		}
		radius := z.RadiusKm * growth
		features = append(features, geojson.NewFeature(
			geojson.NewPolygon(geometry.AngularPolygon(z.Center(), radius, geometry.DefaultSides)),
			map[string]any{
				"id":       z.ID,
				"label":    z.Label,
				"growth":   growth,
				"radiusKm": radius,
			},
		))
	}

	for _, h := range s.Hotspots {
		if h.Progress > progress {
			continue
		}
		features = append(features, geojson.NewFeature(
			geojson.NewPoint(models.Point{Lng: h.Lng, Lat: h.Lat}),
			map[string]any{
				"id":       h.ID,
				"frp":      h.FRP,
				"daynight": h.DayNight,
			},
		))
	}

	return Frame{
		Scenario: s.Name,
		Progress: progress,
		Hectares: Hectares(s, progress),
		Features: geojson.NewFeatureCollection(features),
	}
}
