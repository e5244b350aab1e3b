package risk

import (
	"fmt"
	"math"

	"github.com/mr1hm/zerostrike/internal/models"
)

const (
	MaxThreats     = 20
	MaxPredictions = 12

	// landRiskMinSeverity drops weak cells from the land-risk layer.
	landRiskMinSeverity = 0.3
)

var (
	threatLevels = map[models.ThreatLevel]models.ThreatLevel{
		models.ThreatLevelCritical: models.ThreatLevelCritical,
		models.ThreatLevelHigh:     models.ThreatLevelWarning,
		models.ThreatLevelMedium:   models.ThreatLevelWatch,
		models.ThreatLevelLow:      models.ThreatLevelWatch,
	}
	threatRadiusKm = map[models.ThreatLevel]float64{
		models.ThreatLevelCritical: 42,
		models.ThreatLevelHigh:     30,
		models.ThreatLevelMedium:   20,
		models.ThreatLevelLow:      12,
	}
	recommendations = map[models.ThreatLevel]string{
		models.ThreatLevelCritical: "DISPATCH",
		models.ThreatLevelWarning:  "DISPATCH",
		models.ThreatLevelWatch:    "MONITOR",
	}

	zoneNames = []string{"Zone C7", "Zone C9", "Zone D3", "Zone F3", "Zone A",
		"Sector N", "Zone K4", "Zone G2", "Zone B2", "Zone E1"}
)

// ThreatLevel maps an engine priority onto the dashboard's threat levels.
func ThreatLevel(priority models.ThreatLevel) models.ThreatLevel {
	if l, ok := threatLevels[priority]; ok {
		return l
	}
	return models.ThreatLevelWatch
}

// Threats turns the first limit hits into threat records moving with the
// storm that reaches them.
func Threats(hits []Hit, limit int) []models.Threat {
	hits = hits[:min(limit, len(hits))]

	out := make([]models.Threat, 0, len(hits))
	for i, h := range hits {
		heading, speed := h.Storm.BearingDeg, h.Storm.SpeedKmh
		eta := float64(h.TimeToCollisionHours * 60)
		out = append(out, models.Threat{
			ID:          threatID(i),
			Lng:         round4(h.Center.Lng),
			Lat:         round4(h.Center.Lat),
			Probability: probability(h.Severity),
			RadiusKm:    radiusFor(h.Priority),
			Level:       ThreatLevel(h.Priority),
			Heading:     &heading,
			SpeedKmh:    &speed,
			EtaMin:      &eta,
		})
	}
	return out
}

// LandRisk outlines every sufficiently severe hit: critical and high cells
// become critical zones, medium cells moderate, the rest natural fire zones.
func LandRisk(hits []Hit) []models.LandRiskPolygon {
	out := make([]models.LandRiskPolygon, 0, len(hits))
	for i, h := range hits {
		if h.Severity < landRiskMinSeverity {
			continue
		}
		out = append(out, models.LandRiskPolygon{
			ID:       fmt.Sprintf("LR-%03d", i),
			Name:     h.CellID,
			Level:    landRiskLevel(h.Priority),
			Geometry: h.Ring,
		})
	}
	return out
}

// Predictions summarises the first limit hits as ignition forecast rows.
func Predictions(hits []Hit, limit int) []models.Prediction {
	hits = hits[:min(limit, len(hits))]

	out := make([]models.Prediction, 0, len(hits))
	for i, h := range hits {
		level := ThreatLevel(h.Priority)
		status := "active"
		if level == models.ThreatLevelCritical {
			status = "dispatching"
		}
		rec, ok := recommendations[level]
		if !ok {
			rec = "MONITOR"
		}

		out = append(out, models.Prediction{
			ID:             threatID(i),
			Zone:           zoneNames[i%len(zoneNames)],
			Coords:         formatCoords(h.Center),
			Prob:           probability(h.Severity),
			Risk:           string(level),
			EtaMin:         float64(h.TimeToCollisionHours * 60),
			Humidity:       clamp(math.Trunc((1-h.Atmospheric)*40), 5, 40),
			Wind:           fmt.Sprintf("%d kn %s", int(math.Max(5, h.Atmospheric*35)), compassPoint(h.Storm.BearingDeg)),
			Temp:           clamp(math.Trunc(28+h.Fuel*17), 28, 45),
			Conf:           clamp(math.Trunc(60+h.Severity*40), 60, 98),
			Recommendation: rec,
			Status:         status,
		})
	}
	return out
}

func landRiskLevel(priority models.ThreatLevel) models.LandRiskLevel {
	switch priority {
	case models.ThreatLevelCritical, models.ThreatLevelHigh:
		return models.LandRiskCritical
	case models.ThreatLevelMedium:
		return models.LandRiskModerate
	default:
		return models.LandRiskNaturalFireZone
	}
}

func radiusFor(priority models.ThreatLevel) float64 {
	if r, ok := threatRadiusKm[priority]; ok {
		return r
	}
	return 20
}

func threatID(i int) string {
	return fmt.Sprintf("STRK-%03d", i+1)
}

func probability(severity float64) float64 {
	return math.Min(99, math.Trunc(severity*100))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

func formatCoords(p models.Point) string {
	ns, ew := "N", "E"
	if p.Lat < 0 {
		ns = "S"
	}
	if p.Lng < 0 {
		ew = "W"
	}
	return fmt.Sprintf("%.2f°%s %.2f°%s", math.Abs(p.Lat), ns, math.Abs(p.Lng), ew)
}

var compassPoints = []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

func compassPoint(bearingDeg float64) string {
	i := int(math.Round(math.Mod(bearingDeg+360, 360)/22.5)) % len(compassPoints)
	return compassPoints[i]
}
