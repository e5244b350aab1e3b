package geojson

import (
	"github.com/mr1hm/zerostrike/internal/geometry"
	"github.com/mr1hm/zerostrike/internal/models"
)

// CollidingThreats returns the threats whose center lies inside at least one
// critical land-risk polygon. Only the center is tested, not the full disk.
func CollidingThreats(threats []models.Threat, landRisk []models.LandRiskPolygon) []models.Threat {
	criticals := make([]models.Ring, 0, len(landRisk))
	for _, lr := range landRisk {
		if lr.Level == models.LandRiskCritical {
			criticals = append(criticals, lr.Geometry)
		}
	}

	var out []models.Threat
	for _, t := range threats {
		for _, ring := range criticals {
			if geometry.PointInPolygon(t.Center(), ring) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// ComputeCollisions returns the collision layer, or nil when there is nothing
// to draw: either input is empty or no threat sits inside a critical zone.
func ComputeCollisions(threats []models.Threat, landRisk []models.LandRiskPolygon) *FeatureCollection {
	if len(threats) == 0 || len(landRisk) == 0 {
		return nil
	}

	colliding := CollidingThreats(threats, landRisk)
	if len(colliding) == 0 {
		return nil
	}

	features := make([]Feature, 0, len(colliding))
	for _, t := range colliding {
		features = append(features, NewFeature(
			NewPolygon(geometry.CircleRing(t.Center(), t.RadiusKm, geometry.DefaultSteps)),
			map[string]any{
				"threatId": t.ID,
				"severity": string(t.Level),
			},
		))
	}

	fc := NewFeatureCollection(features)
	return &fc
}
