package ingestion

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mr1hm/zerostrike/internal/geojson"
	"github.com/mr1hm/zerostrike/internal/models"
	"github.com/mr1hm/zerostrike/internal/risk"
)

// EngineSource derives threats, land risk and predictions from the risk
// engine instead of an upstream API. The engine runs at most once per hour
// of wall-clock time; every fetch within that hour shares the result.
type EngineSource struct {
	engine *risk.Engine
	fleet  []models.Drone
	depots []risk.Depot
	now    func() time.Time

	mu   sync.Mutex
	hour time.Time
	hits []risk.Hit
}

// NewEngineSource serves fleet as the drone roster; the engine produces no
// fleet telemetry of its own.
func NewEngineSource(engine *risk.Engine, fleet []models.Drone) *EngineSource {
	return &EngineSource{
		engine: engine,
		fleet:  fleet,
		depots: risk.DefaultDepots,
		now:    time.Now,
	}
}

func (s *EngineSource) run(ctx context.Context) ([]risk.Hit, error) {
	hour := s.now().UTC().Truncate(time.Hour)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hits != nil && s.hour.Equal(hour) {
		return s.hits, nil
	}

	hits, err := s.engine.Run(ctx, hour)
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []risk.Hit{}
	}
	s.hour, s.hits = hour, hits
	slog.Info("risk engine run complete", "forecast_hour", hour, "threatened_cells", len(hits))
	return hits, nil
}

func (s *EngineSource) FetchFleet(ctx context.Context) ([]models.Drone, error) {
	return slices.Clone(s.fleet), nil
}

func (s *EngineSource) FetchThreats(ctx context.Context) ([]models.Threat, error) {
	hits, err := s.run(ctx)
	if err != nil {
		return nil, err
	}
	return risk.Threats(hits, risk.MaxThreats), nil
}

func (s *EngineSource) FetchLandRisk(ctx context.Context) ([]models.LandRiskPolygon, error) {
	hits, err := s.run(ctx)
	if err != nil {
		return nil, err
	}
	return risk.LandRisk(hits), nil
}

// FetchCollisions always returns nil: collisions are computed locally from
// the threats and land risk the engine produced.
func (s *EngineSource) FetchCollisions(ctx context.Context) (*geojson.FeatureCollection, error) {
	return nil, nil
}

func (s *EngineSource) FetchPredictions(ctx context.Context) ([]models.Prediction, error) {
	hits, err := s.run(ctx)
	if err != nil {
		return nil, err
	}
	return risk.Predictions(hits, risk.MaxPredictions), nil
}

// Routes plans drone sorties from the depots to the highest-priority cells.
func (s *EngineSource) Routes(ctx context.Context) (geojson.FeatureCollection, error) {
	hits, err := s.run(ctx)
	if err != nil {
		return geojson.FeatureCollection{}, err
	}
	cfg := s.engine.Config()
	return risk.RoutesGeoJSON(cfg.PlanRoutes(hits, s.depots)), nil
}
