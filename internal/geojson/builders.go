package geojson

import (
	"github.com/mr1hm/zerostrike/internal/geometry"
	"github.com/mr1hm/zerostrike/internal/models"
)

const (
	// CoverageRadiusKm is the seeding radius of a deployed drone.
	CoverageRadiusKm = 80

	// TrajectoryHorizonHours is how far ahead threat tracks are projected.
	TrajectoryHorizonHours = 2

	ColorCritical = "#ff2020"
	ColorElevated = "#ff6a00"
)

// ThreatColor is a rendering hint only.
func ThreatColor(level models.ThreatLevel) string {
	if level == models.ThreatLevelCritical {
		return ColorCritical
	}
	return ColorElevated
}

func BuildThreatGeoJSON(threats []models.Threat) FeatureCollection {
	features := make([]Feature, 0, len(threats))
	for _, t := range threats {
		features = append(features, NewFeature(
			NewPolygon(geometry.CircleRing(t.Center(), t.RadiusKm, geometry.DefaultSteps)),
			map[string]any{
				"id":    t.ID,
				"level": string(t.Level),
				"color": ThreatColor(t.Level),
			},
		))
	}
	return NewFeatureCollection(features)
}

// BuildCoverageGeoJSON emits one coverage disk per deployed drone.
func BuildCoverageGeoJSON(drones []models.Drone) FeatureCollection {
	features := make([]Feature, 0, len(drones))
	for _, d := range drones {
		if !d.Deployed() {
			continue
		}
		features = append(features, NewFeature(
			NewPolygon(geometry.CircleRing(d.Center(), CoverageRadiusKm, geometry.DefaultSteps)),
			map[string]any{"id": d.ID},
		))
	}
	return NewFeatureCollection(features)
}

// BuildTrajectoryGeoJSON projects every threat with a heading and speed
// TrajectoryHorizonHours ahead, emitting a LineString and a tip Point for each.
// The tip carries the great-circle distance it lies from the threat center.
func BuildTrajectoryGeoJSON(threats []models.Threat) FeatureCollection {
	features := make([]Feature, 0, 2*len(threats))
	for _, t := range threats {
		if !t.HasTrajectory() {
			continue
		}
		origin := t.Center()
		end := geometry.ProjectPoint(origin, *t.Heading, *t.SpeedKmh*TrajectoryHorizonHours)
		color := ThreatColor(t.Level)

		features = append(features,
			NewFeature(NewLineString(origin, end), map[string]any{"id": t.ID, "color": color}),
			NewFeature(NewPoint(end), map[string]any{
				"id":         t.ID + "-tip",
				"color":      color,
				"distanceKm": geometry.HaversineKm(origin, end),
			}),
		)
	}
	return NewFeatureCollection(features)
}
