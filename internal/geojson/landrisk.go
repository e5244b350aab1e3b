package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/mr1hm/zerostrike/internal/models"
)

func LandRiskGeoJSON(polys []models.LandRiskPolygon) FeatureCollection {
	features := make([]Feature, 0, len(polys))
	for _, lr := range polys {
		features = append(features, NewFeature(
			NewPolygon(lr.Geometry),
			map[string]any{
				"id":    lr.ID,
				"level": string(lr.Level),
				"name":  lr.Name,
			},
		))
	}
	return NewFeatureCollection(features)
}

type landRiskDoc struct {
	Features []struct {
		Properties struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Level string `json:"level"`
		} `json:"properties"`
		Geometry struct {
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ParseLandRisk decodes a land-risk FeatureCollection. Only the exterior ring
// of each Polygon is kept; other geometry types are skipped.
func ParseLandRisk(data []byte) ([]models.LandRiskPolygon, error) {
	var doc landRiskDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding land risk: %w", err)
	}

	polys := make([]models.LandRiskPolygon, 0, len(doc.Features))
	for _, f := range doc.Features {
		if f.Geometry.Type != TypePolygon {
			continue
		}
		var rings [][][2]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("error decoding land risk %q coordinates: %w", f.Properties.ID, err)
		}
		if len(rings) == 0 {
			continue
		}
		ring := make(models.Ring, len(rings[0]))
		for i, c := range rings[0] {
			ring[i] = models.Point{Lng: c[0], Lat: c[1]}
		}
		polys = append(polys, models.LandRiskPolygon{
			ID:       f.Properties.ID,
			Name:     f.Properties.Name,
			Level:    models.LandRiskLevel(f.Properties.Level),
			Geometry: ring,
		})
	}
	return polys, nil
}
