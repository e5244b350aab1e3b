package risk

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/mr1hm/zerostrike/internal/geojson"
	"github.com/mr1hm/zerostrike/internal/geometry"
	"github.com/mr1hm/zerostrike/internal/models"
)

// Depot is a base drones launch from.
type Depot struct {
	Name     string       `json:"name"`
	Location models.Point `json:"location"`
}

var DefaultDepots = []Depot{
	{Name: "Manises Air Base", Location: models.Point{Lng: -0.48, Lat: 39.49}},
	{Name: "Castellón Airport", Location: models.Point{Lng: 0.07, Lat: 40.21}},
	{Name: "Alicante Airport", Location: models.Point{Lng: -0.56, Lat: 38.28}},
	{Name: "Albacete Air Base", Location: models.Point{Lng: -1.86, Lat: 38.95}},
	{Name: "Requena Heliport", Location: models.Point{Lng: -1.10, Lat: 39.49}},
}

// Route sends one drone from its depot to a threatened cell.
type Route struct {
	DroneID        string
	Depot          Depot
	TargetCellID   string
	Target         models.Point
	DistanceKm     float64
	EtaMin         float64
	ThreatSeverity float64
	ThreatPriority float64
}

// PlanRoutes assigns the cfg.RoutingDroneCount drones, spread round-robin
// over depots, to the top cfg.RoutingTopN hits. Each drone in turn takes the
// nearest target not yet claimed; targets out of cfg.RoutingRangeKm are
// never flown. Routes are ordered by ETA.
func (cfg Config) PlanRoutes(hits []Hit, depots []Depot) []Route {
	if len(depots) == 0 || cfg.RoutingDroneCount < 1 || len(hits) == 0 {
		return nil
	}
	targets := hits[:min(cfg.RoutingTopN, len(hits))]

	claimed := make([]bool, len(targets))
	var routes []Route
	for d := 0; d < cfg.RoutingDroneCount; d++ {
		depot := depots[d%len(depots)]

		best, bestDist := -1, math.Inf(1)
		for i, t := range targets {
			if claimed[i] {
				continue
			}
			if dist := geometry.HaversineKm(depot.Location, t.Center); dist < bestDist {
				best, bestDist = i, dist
			}
		}
		if best < 0 {
			break
		}
		claimed[best] = true
		if bestDist > cfg.RoutingRangeKm {
			continue
		}

		t := targets[best]
		routes = append(routes, Route{
			DroneID:        fmt.Sprintf("drone-%d", d+1),
			Depot:          depot,
			TargetCellID:   t.CellID,
			Target:         t.Center,
			DistanceKm:     bestDist,
			EtaMin:         bestDist / cfg.RoutingSpeedKmh * 60,
			ThreatSeverity: t.Severity,
			ThreatPriority: t.PriorityScore,
		})
	}

	slices.SortStableFunc(routes, func(a, b Route) int {
		return cmp.Compare(a.EtaMin, b.EtaMin)
	})
	return routes
}

func RoutesGeoJSON(routes []Route) geojson.FeatureCollection {
	features := make([]geojson.Feature, 0, len(routes))
	for _, r := range routes {
		features = append(features, geojson.NewFeature(
			geojson.NewLineString(r.Depot.Location, r.Target),
			map[string]any{
				"droneId":        r.DroneID,
				"depotName":      r.Depot.Name,
				"targetCellId":   r.TargetCellID,
				"distanceKm":     math.Round(r.DistanceKm*100) / 100,
				"etaMin":         math.Round(r.EtaMin*10) / 10,
				"threatSeverity": r.ThreatSeverity,
				"threatPriority": r.ThreatPriority,
			},
		))
	}
	return geojson.NewFeatureCollection(features)
}
