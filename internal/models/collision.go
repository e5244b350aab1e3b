package models

import "time"

// CollisionEvent records the moment a threat entered a critical land-risk zone.
type CollisionEvent struct {
	ID         string      `json:"id"`
	ThreatID   string      `json:"threatId"`
	Severity   ThreatLevel `json:"severity"`
	Lng        float64     `json:"lng"`
	Lat        float64     `json:"lat"`
	RadiusKm   float64     `json:"radiusKm"`
	DetectedAt time.Time   `json:"detectedAt"`
}
