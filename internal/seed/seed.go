// Package seed holds the built-in dataset used when no upstream API is
// configured or reachable. It is parsed once and treated as read-only.
package seed

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mr1hm/zerostrike/internal/models"
	"github.com/mr1hm/zerostrike/internal/timelapse"
)

//go:embed seed.yaml
var raw []byte

type Data struct {
	Drones      []models.Drone           `yaml:"drones"`
	Threats     []models.Threat          `yaml:"threats"`
	LandRisk    []models.LandRiskPolygon `yaml:"landRisk"`
	Predictions []models.Prediction      `yaml:"predictions"`
	Scenarios   []timelapse.Scenario     `yaml:"scenarios"`
}

var (
	once   sync.Once
	loaded *Data
	errLd  error
)

// Load parses the embedded dataset on first use. Callers must not modify the
// returned slices.
func Load() (*Data, error) {
	once.Do(func() {
		loaded, errLd = Parse(raw)
	})
	return loaded, errLd
}

func Parse(b []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("error parsing seed data: %w", err)
	}
	return &d, nil
}

// Scenario looks up a time-lapse scenario by name.
func (d *Data) Scenario(name string) (timelapse.Scenario, bool) {
	for _, s := range d.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return timelapse.Scenario{}, false
}
