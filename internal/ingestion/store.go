package ingestion

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mr1hm/zerostrike/internal/geojson"
	internalgrpc "github.com/mr1hm/zerostrike/internal/grpc"
	"github.com/mr1hm/zerostrike/internal/metrics"
	"github.com/mr1hm/zerostrike/internal/models"
)

// Snapshot is an immutable view of all inputs and derived layers. A nil
// entry in Layers means the layer has nothing to draw.
type Snapshot struct {
	Fleet       []models.Drone
	Threats     []models.Threat
	LandRisk    []models.LandRiskPolygon
	Predictions []models.Prediction

	Layers        map[geojson.Layer]*geojson.FeatureCollection
	LayersUpdated map[geojson.Layer]time.Time
	UpdatedAt     time.Time

	// Live is set once any collection came from the upstream API.
	Live bool
}

func (s *Snapshot) Layer(l geojson.Layer) (*geojson.FeatureCollection, time.Time) {
	return s.Layers[l], s.LayersUpdated[l]
}

// Store owns the current Snapshot. Every setter publishes a new snapshot with
// the dependent layers already rebuilt, so readers never see a partial update.
type Store struct {
	mu          sync.Mutex
	current     atomic.Pointer[Snapshot]
	colliding   map[string]bool
	broadcaster *internalgrpc.Broadcaster
	onCollision func([]models.CollisionEvent)
	now         func() time.Time
}

func NewStore(broadcaster *internalgrpc.Broadcaster) *Store {
	s := &Store{
		colliding:   make(map[string]bool),
		broadcaster: broadcaster,
		now:         time.Now,
	}
	s.current.Store(&Snapshot{
		Layers:        make(map[geojson.Layer]*geojson.FeatureCollection),
		LayersUpdated: make(map[geojson.Layer]time.Time),
	})
	return s
}

// OnCollision registers a callback for threats that newly entered a critical
// zone. It runs with the store locked and must not block.
func (s *Store) OnCollision(fn func([]models.CollisionEvent)) {
	s.mu.Lock()
	s.onCollision = fn
	s.mu.Unlock()
}

func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

func (s *Store) Layer(l geojson.Layer) (*geojson.FeatureCollection, time.Time) {
	return s.Snapshot().Layer(l)
}

// Init replaces every collection at once without reporting collision events,
// so a restart does not log the same collisions again.
func (s *Store) Init(fleet []models.Drone, threats []models.Threat, landRisk []models.LandRiskPolygon, predictions []models.Prediction) {
	s.update(func(next *Snapshot, changed *[]geojson.Layer) {
		next.Fleet = slices.Clone(fleet)
		next.Threats = slices.Clone(threats)
		next.LandRisk = slices.Clone(landRisk)
		next.Predictions = slices.Clone(predictions)
		s.rebuildCoverage(next, changed)
		s.rebuildThreats(next, changed)
		s.rebuildLandRisk(next, changed)
		s.rebuildCollisions(next, changed, false)
	})
}

func (s *Store) SetFleet(fleet []models.Drone) {
	s.update(func(next *Snapshot, changed *[]geojson.Layer) {
		next.Fleet = slices.Clone(fleet)
		s.rebuildCoverage(next, changed)
	})
}

func (s *Store) SetThreats(threats []models.Threat) {
	s.update(func(next *Snapshot, changed *[]geojson.Layer) {
		next.Threats = slices.Clone(threats)
		s.rebuildThreats(next, changed)
		s.rebuildCollisions(next, changed, true)
	})
}

func (s *Store) SetLandRisk(landRisk []models.LandRiskPolygon) {
	s.update(func(next *Snapshot, changed *[]geojson.Layer) {
		next.LandRisk = slices.Clone(landRisk)
		s.rebuildLandRisk(next, changed)
		s.rebuildCollisions(next, changed, true)
	})
}

func (s *Store) SetPredictions(predictions []models.Prediction) {
	s.update(func(next *Snapshot, changed *[]geojson.Layer) {
		next.Predictions = slices.Clone(predictions)
	})
}

// SetServerCollisions replaces the collision layer with one computed
// upstream. It stays until threats or land risk change again.
func (s *Store) SetServerCollisions(fc *geojson.FeatureCollection) {
	s.update(func(next *Snapshot, changed *[]geojson.Layer) {
		next.Layers[geojson.LayerCollisions] = fc
		*changed = append(*changed, geojson.LayerCollisions)
	})
}

func (s *Store) MarkLive() {
	if s.Snapshot().Live {
		return
	}
	s.update(func(next *Snapshot, _ *[]geojson.Layer) {
		next.Live = true
	})
}

func (s *Store) update(apply func(next *Snapshot, changed *[]geojson.Layer)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	next := *cur
	next.Layers = maps.Clone(cur.Layers)
	next.LayersUpdated = maps.Clone(cur.LayersUpdated)

	var changed []geojson.Layer
	apply(&next, &changed)

	now := s.now()
	next.UpdatedAt = now
	for _, l := range changed {
		next.LayersUpdated[l] = now
	}
	s.current.Store(&next)

	if s.broadcaster == nil {
		return
	}
	for _, l := range changed {
		s.broadcaster.Broadcast(&internalgrpc.LayerUpdate{
			Layer:      l,
			UpdatedAt:  now,
			Collection: next.Layers[l],
		})
	}
}

func (s *Store) rebuildCoverage(next *Snapshot, changed *[]geojson.Layer) {
	defer observe(geojson.LayerCoverage, time.Now())
	fc := geojson.BuildCoverageGeoJSON(next.Fleet)
	next.Layers[geojson.LayerCoverage] = &fc
	*changed = append(*changed, geojson.LayerCoverage)
}

func (s *Store) rebuildThreats(next *Snapshot, changed *[]geojson.Layer) {
	start := time.Now()
	zones := geojson.BuildThreatGeoJSON(next.Threats)
	next.Layers[geojson.LayerThreats] = &zones
	observe(geojson.LayerThreats, start)

	start = time.Now()
	tracks := geojson.BuildTrajectoryGeoJSON(next.Threats)
	next.Layers[geojson.LayerTrajectories] = &tracks
	observe(geojson.LayerTrajectories, start)

	*changed = append(*changed, geojson.LayerThreats, geojson.LayerTrajectories)
}

func (s *Store) rebuildLandRisk(next *Snapshot, changed *[]geojson.Layer) {
	defer observe(geojson.LayerLandRisk, time.Now())
	fc := geojson.LandRiskGeoJSON(next.LandRisk)
	next.Layers[geojson.LayerLandRisk] = &fc
	*changed = append(*changed, geojson.LayerLandRisk)
}

// rebuildCollisions recomputes the collision layer and, when report is set,
// emits an event for each threat not colliding in the previous snapshot.
func (s *Store) rebuildCollisions(next *Snapshot, changed *[]geojson.Layer, report bool) {
	defer observe(geojson.LayerCollisions, time.Now())

	next.Layers[geojson.LayerCollisions] = geojson.ComputeCollisions(next.Threats, next.LandRisk)
	*changed = append(*changed, geojson.LayerCollisions)

	colliding := geojson.CollidingThreats(next.Threats, next.LandRisk)
	metrics.ActiveCollisions.Set(float64(len(colliding)))

	ids := make(map[string]bool, len(colliding))
	var entered []models.CollisionEvent
	for _, t := range colliding {
		ids[t.ID] = true
		if s.colliding[t.ID] {
			continue
		}
		entered = append(entered, models.CollisionEvent{
			ThreatID:   t.ID,
			Severity:   t.Level,
			Lng:        t.Lng,
			Lat:        t.Lat,
			RadiusKm:   t.RadiusKm,
			DetectedAt: s.now(),
		})
	}
	s.colliding = ids

	if report && len(entered) > 0 && s.onCollision != nil {
		s.onCollision(entered)
	}
}

func observe(l geojson.Layer, start time.Time) {
	metrics.LayerRecomputeDuration.WithLabelValues(string(l)).Observe(time.Since(start).Seconds())
}
