package models

type ThreatLevel string

const (
	ThreatLevelCritical ThreatLevel = "critical"
	ThreatLevelWarning  ThreatLevel = "warning"
	ThreatLevelHigh     ThreatLevel = "high"
	ThreatLevelWatch    ThreatLevel = "watch"
	ThreatLevelMedium   ThreatLevel = "medium"
	ThreatLevelLow      ThreatLevel = "low"
)

// Threat is a storm or lightning-risk cell. Heading and SpeedKmh are optional;
// a threat without both is never projected forward.
type Threat struct {
	ID          string      `json:"id" yaml:"id"`
	Lng         float64     `json:"lng" yaml:"lng"`
	Lat         float64     `json:"lat" yaml:"lat"`
	Probability float64     `json:"probability" yaml:"probability"`
	RadiusKm    float64     `json:"radiusKm" yaml:"radiusKm"`
	Level       ThreatLevel `json:"level" yaml:"level"`
	Heading     *float64    `json:"heading,omitempty" yaml:"heading,omitempty"`   // compass degrees, 0 = north
	SpeedKmh    *float64    `json:"speedKmh,omitempty" yaml:"speedKmh,omitempty"` // ground speed
	EtaMin      *float64    `json:"etaMin" yaml:"etaMin,omitempty"`               // nil = monitoring only
}

func (t *Threat) Center() Point {
	return Point{Lng: t.Lng, Lat: t.Lat}
}

// HasTrajectory reports whether the threat carries enough kinematics to be projected.
func (t *Threat) HasTrajectory() bool {
	return t.Heading != nil && t.SpeedKmh != nil
}
