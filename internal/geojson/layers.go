package geojson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Layer names a derived or served map layer.
type Layer string

const (
	LayerThreats      Layer = "threats"
	LayerCoverage     Layer = "coverage"
	LayerTrajectories Layer = "trajectories"
	LayerCollisions   Layer = "collisions"
	LayerLandRisk     Layer = "land_risk"
)

var Layers = []Layer{LayerThreats, LayerCoverage, LayerTrajectories, LayerCollisions, LayerLandRisk}

func ParseLayer(s string) (Layer, bool) {
	for _, l := range Layers {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

// ParseFeatureCollection decodes an arbitrary FeatureCollection. A JSON null
// body yields a nil collection and no error.
func ParseFeatureCollection(data []byte) (*FeatureCollection, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}

	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("error decoding feature collection: %w", err)
	}
	if fc.Type != TypeFeatureCollection {
		return nil, fmt.Errorf("unexpected GeoJSON type %q", fc.Type)
	}
	if fc.Features == nil {
		fc.Features = []Feature{}
	}
	return &fc, nil
}
