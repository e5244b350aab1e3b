// Package timelapse turns a global 0..1 progress value into per-zone fire
// growth for the spread replay.
package timelapse

import (
	"math"

	"github.com/mr1hm/zerostrike/internal/models"
)

// FireZone grows from nothing once global progress passes Threshold and
// reaches RadiusKm at progress 1.
type FireZone struct {
	ID        string  `json:"id" yaml:"id"`
	Label     string  `json:"label" yaml:"label"`
	Lng       float64 `json:"lng" yaml:"lng"`
	Lat       float64 `json:"lat" yaml:"lat"`
	RadiusKm  float64 `json:"radiusKm" yaml:"radiusKm"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

func (z *FireZone) Center() models.Point {
	return models.Point{Lng: z.Lng, Lat: z.Lat}
}

// Hotspot is a satellite fire detection revealed once progress reaches Progress.
type Hotspot struct {
	ID       int     `json:"id" yaml:"id"`
	Lng      float64 `json:"lng" yaml:"lng"`
	Lat      float64 `json:"lat" yaml:"lat"`
	FRP      float64 `json:"frp" yaml:"frp"` // fire radiative power, MW
	DayNight string  `json:"daynight" yaml:"daynight"`
	Progress float64 `json:"progress" yaml:"progress"`
}

type Scenario struct {
	Name            string     `json:"name" yaml:"name"`
	MaxAreaHectares float64    `json:"maxAreaHectares" yaml:"maxAreaHectares"`
	Zones           []FireZone `json:"zones" yaml:"zones"`
	Hotspots        []Hotspot  `json:"hotspots" yaml:"hotspots"`
}

// ZoneGrowthFraction is 0 until progress passes threshold, then rises
// linearly to 1 at progress 1. threshold == 1 never reaches the division
// because progress cannot exceed 1.
func ZoneGrowthFraction(progress, threshold float64) float64 {
	if threshold >= progress {
		return 0
	}
	return math.Min(1, (progress-threshold)/(1-threshold))
}

func EffectiveRadius(zone FireZone, progress float64) float64 {
	return zone.RadiusKm * ZoneGrowthFraction(progress, zone.Threshold)
}

// Hectares is the narrative burned-area counter. It scales the scenario
// maximum by progress and is not derived from zone geometry.
func Hectares(s Scenario, progress float64) int {
	return int(math.Round(s.MaxAreaHectares * progress))
}

// clamp01 maps NaN to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return math.Min(1, v)
}
