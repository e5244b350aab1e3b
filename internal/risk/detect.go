package risk

import (
	"cmp"
	"math"
	"slices"

	"github.com/mr1hm/zerostrike/internal/geometry"
	"github.com/mr1hm/zerostrike/internal/models"
)

// StormCell is a convective cell moving on a fixed bearing.
type StormCell struct {
	ID         string       `json:"id"`
	Center     models.Point `json:"center"`
	RadiusKm   float64      `json:"radiusKm"`
	SpeedKmh   float64      `json:"speedKmh"`
	BearingDeg float64      `json:"bearingDeg"`
}

// Hit is a grid cell at or above the severity threshold that a projected
// storm cell covers within the horizon.
type Hit struct {
	CellID string
	Row    int
	Col    int
	Center models.Point
	Ring   models.Ring

	Severity    float64
	Fuel        float64
	Atmospheric float64
	Consequence float64

	// TimeToCollisionHours is the first forecast hour, starting at 1, in
	// which a storm covers the cell.
	TimeToCollisionHours int
	Storm                StormCell

	PriorityScore float64
	Priority      models.ThreatLevel
}

const (
	// minUrgencyHours floors the time term of PriorityScore.
	minUrgencyHours = 0.25

	// Cells below minConsequence are always labelled low.
	minConsequence = 0.05
)

// PriorityScore weights severity by urgency: severity / sqrt(hours), with
// hours floored at a quarter hour.
func PriorityScore(severity, timeToCollisionHours float64) float64 {
	return severity / math.Sqrt(math.Max(timeToCollisionHours, minUrgencyHours))
}

func (cfg Config) PriorityLabel(score float64) models.ThreatLevel {
	switch {
	case score >= cfg.PriorityCritical:
		return models.ThreatLevelCritical
	case score >= cfg.PriorityHigh:
		return models.ThreatLevelHigh
	case score >= cfg.PriorityMedium:
		return models.ThreatLevelMedium
	default:
		return models.ThreatLevelLow
	}
}

// Detect scores every cell, projects each storm hour by hour along its
// bearing and records the earliest hour it reaches each cell whose severity
// meets cfg.ThreatThreshold. When mask is not empty, cells whose outline is
// not entirely inside it are dropped. Hits are sorted by priority score,
// highest first.
func Detect(cfg Config, g Grid, cells [][]Cell, storms []StormCell, mask models.Ring) []Hit {
	rows, cols := g.Rows(), g.Cols()

	type scored struct {
		fuel, atmo, cons, severity float64
		hour                       int
		storm                      int
	}
	grid := make([][]scored, rows)
	for r := range grid {
		grid[r] = make([]scored, cols)
		for c := range grid[r] {
			in := cells[r][c]
			s := scored{
				fuel:  cfg.FuelScore(in),
				atmo:  cfg.AtmosphericScore(in),
				cons:  cfg.ConsequenceScore(in),
				storm: -1,
			}
			s.severity = cfg.Severity(s.fuel, s.atmo, s.cons)
			grid[r][c] = s
		}
	}

	projected := make([]models.Point, len(storms))
	for hour := 1; hour <= cfg.HorizonHours; hour++ {
		for i, st := range storms {
			projected[i] = geometry.ProjectPoint(st.Center, st.BearingDeg, st.SpeedKmh*float64(hour))
		}

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				s := &grid[r][c]
				if s.hour != 0 || s.severity < cfg.ThreatThreshold {
					continue
				}
				center := g.Center(r, c)
				for i, p := range projected {
					if geometry.HaversineKm(center, p) <= storms[i].RadiusKm {
						s.hour = hour
						s.storm = i
						break
					}
				}
			}
		}
	}

	var hits []Hit
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			s := grid[r][c]
			if s.hour == 0 {
				continue
			}

			center := g.Center(r, c)
			ring := g.CellRing(r, c)
			if len(mask) > 0 && !insideMask(center, ring, mask) {
				continue
			}

			score := PriorityScore(s.severity, float64(s.hour))
			label := cfg.PriorityLabel(score)
			if s.cons < minConsequence {
				label = models.ThreatLevelLow
			}

			hits = append(hits, Hit{
				CellID:               CellID(r, c),
				Row:                  r,
				Col:                  c,
				Center:               center,
				Ring:                 ring,
				Severity:             s.severity,
				Fuel:                 s.fuel,
				Atmospheric:          s.atmo,
				Consequence:          s.cons,
				TimeToCollisionHours: s.hour,
				Storm:                storms[s.storm],
				PriorityScore:        score,
				Priority:             label,
			})
		}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		return cmp.Compare(b.PriorityScore, a.PriorityScore)
	})
	return hits
}

func insideMask(center models.Point, ring, mask models.Ring) bool {
	if !geometry.PointInPolygon(center, mask) {
		return false
	}
	for _, p := range ring {
		if !geometry.PointInPolygon(p, mask) {
			return false
		}
	}
	return true
}
