package models

type LandRiskLevel string

const (
	LandRiskCritical        LandRiskLevel = "critical"
	LandRiskModerate        LandRiskLevel = "moderate"
	LandRiskNaturalFireZone LandRiskLevel = "natural_fire_zone"
)

// LandRiskPolygon is a static or server-provided risk region. Only critical
// regions take part in collision detection.
type LandRiskPolygon struct {
	ID       string        `json:"id" yaml:"id"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	Level    LandRiskLevel `json:"level" yaml:"level"`
	Geometry Ring          `json:"geometry" yaml:"geometry"`
}
