package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/zerostrike/internal/config"
	"github.com/mr1hm/zerostrike/internal/geojson"
	"github.com/mr1hm/zerostrike/internal/models"
	"github.com/mr1hm/zerostrike/internal/repository"
	"github.com/mr1hm/zerostrike/internal/seed"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockRepo implements both repositories in memory
type mockRepo struct {
	mu        sync.Mutex
	snapshots map[repository.SnapshotKind]*repository.Snapshot
	events    []models.CollisionEvent
	purged    atomic.Int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		snapshots: make(map[repository.SnapshotKind]*repository.Snapshot),
	}
}

func (m *mockRepo) SaveSnapshot(ctx context.Context, kind repository.SnapshotKind, payload []byte, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[kind] = &repository.Snapshot{Kind: kind, Payload: payload, SavedAt: at}
	return nil
}

func (m *mockRepo) LatestSnapshot(ctx context.Context, kind repository.SnapshotKind) (*repository.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[kind]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (m *mockRepo) AddCollisionEvents(ctx context.Context, events []models.CollisionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *mockRepo) ListCollisionEvents(ctx context.Context, opts repository.Filter) ([]models.CollisionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.CollisionEvent(nil), m.events...), nil
}

func (m *mockRepo) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	m.purged.Add(1)
	return 0, nil
}

// mockSource serves fixed collections, or err for every call
type mockSource struct {
	fleet       []models.Drone
	threats     []models.Threat
	landRisk    []models.LandRiskPolygon
	collisions  *geojson.FeatureCollection
	predictions []models.Prediction
	err         error
	calls       atomic.Int64

	// fails only FetchCollisions
	collisionsErr error
}

func (s *mockSource) FetchFleet(ctx context.Context) ([]models.Drone, error) {
	s.calls.Add(1)
	return s.fleet, s.err
}

func (s *mockSource) FetchThreats(ctx context.Context) ([]models.Threat, error) {
	s.calls.Add(1)
	return s.threats, s.err
}

func (s *mockSource) FetchLandRisk(ctx context.Context) ([]models.LandRiskPolygon, error) {
	s.calls.Add(1)
	return s.landRisk, s.err
}

func (s *mockSource) FetchCollisions(ctx context.Context) (*geojson.FeatureCollection, error) {
	s.calls.Add(1)
	if s.collisionsErr != nil {
		return nil, s.collisionsErr
	}
	return s.collisions, s.err
}

func (s *mockSource) FetchPredictions(ctx context.Context) ([]models.Prediction, error) {
	s.calls.Add(1)
	return s.predictions, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Worker: config.WorkerConfig{
			Count:      2,
			BufferSize: 20,
		},
		Polling: config.PollingConfig{
			Fleet:       time.Minute,
			Threats:     time.Minute,
			Predictions: time.Minute,
			Map:         time.Minute,
		},
		Retention: config.RetentionConfig{
			Collisions:    72 * time.Hour,
			PurgeSchedule: "@every 1h",
		},
	}
}

func TestManager_StartStop_NoUpstream(t *testing.T) {
	store := NewStore(nil)
	mgr := NewManager(testConfig(), NewAPIClient("", 0), store, nil, nil)

	if err := mgr.WarmStart(context.Background()); err != nil {
		t.Fatalf("WarmStart failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	cancel()

	done := make(chan struct{})
	go func() {
		mgr.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("manager.Stop() timed out - possible goroutine leak")
	}

	if store.Snapshot().Live {
		t.Error("expected store to stay on seed data without upstream")
	}
}

func TestManager_WarmStart_Seed(t *testing.T) {
	store := NewStore(nil)
	mgr := NewManager(testConfig(), &mockSource{}, store, nil, nil)

	if err := mgr.WarmStart(context.Background()); err != nil {
		t.Fatalf("WarmStart failed: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Fleet) != 7 || len(snap.Threats) != 3 || len(snap.LandRisk) != 12 {
		t.Errorf("unexpected seeded sizes: %d drones, %d threats, %d land risk",
			len(snap.Fleet), len(snap.Threats), len(snap.LandRisk))
	}
	if fc, _ := snap.Layer(geojson.LayerCollisions); fc == nil || len(fc.Features) != 3 {
		t.Errorf("expected 3 seeded collisions, got %+v", fc)
	}
	if fc, _ := snap.Layer(geojson.LayerCoverage); fc == nil || len(fc.Features) != 3 {
		t.Errorf("expected 3 coverage disks, got %+v", fc)
	}
}

func TestManager_WarmStart_FromSnapshot(t *testing.T) {
	repo := newMockRepo()
	payload, _ := json.Marshal([]models.Drone{{ID: "ZS-99", Status: models.DroneStatusDeployed}})
	repo.SaveSnapshot(context.Background(), repository.KindFleet, payload, time.Now())
	repo.SaveSnapshot(context.Background(), repository.KindThreats, []byte(`{corrupt`), time.Now())

	store := NewStore(nil)
	mgr := NewManager(testConfig(), &mockSource{}, store, repo, repo)

	if err := mgr.WarmStart(context.Background()); err != nil {
		t.Fatalf("WarmStart failed: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Fleet) != 1 || snap.Fleet[0].ID != "ZS-99" {
		t.Errorf("expected fleet restored from snapshot, got %+v", snap.Fleet)
	}
	// corrupt snapshot falls back to seed
	if len(snap.Threats) != 3 {
		t.Errorf("expected seeded threats, got %d", len(snap.Threats))
	}
}

func TestManager_PollFailureKeepsStaleData(t *testing.T) {
	store := NewStore(nil)
	src := &mockSource{err: errors.New("connection refused")}
	mgr := NewManager(testConfig(), src, store, nil, nil)
	mgr.WarmStart(context.Background())

	before := store.Snapshot()
	for _, source := range []string{sourceFleet, sourceThreats, sourcePredictions, sourceMap} {
		mgr.poll(context.Background(), source)
	}
	after := store.Snapshot()

	if before != after {
		t.Error("expected snapshot to be untouched after failed polls")
	}
	if src.calls.Load() != 4 {
		t.Errorf("expected 4 fetches, got %d", src.calls.Load())
	}
}

func TestManager_PollMap_ServerCollisionsOverride(t *testing.T) {
	data, err := seed.Load()
	if err != nil {
		t.Fatalf("seed.Load failed: %v", err)
	}

	server := geojson.NewFeatureCollection([]geojson.Feature{
		geojson.NewFeature(geojson.NewPoint(models.Point{Lng: 1, Lat: 2}), map[string]any{"threatId": "SRV-1"}),
	})
	src := &mockSource{landRisk: data.LandRisk, collisions: &server}

	store := NewStore(nil)
	mgr := NewManager(testConfig(), src, store, nil, nil)
	mgr.WarmStart(context.Background())

	mgr.poll(context.Background(), sourceMap)

	snap := store.Snapshot()
	if !snap.Live {
		t.Error("expected store to be marked live")
	}
	fc, _ := snap.Layer(geojson.LayerCollisions)
	if fc == nil || len(fc.Features) != 1 || fc.Features[0].Properties["threatId"] != "SRV-1" {
		t.Errorf("expected server collision layer, got %+v", fc)
	}
}

func TestManager_PollMap_CollisionFetchFailure(t *testing.T) {
	data, err := seed.Load()
	if err != nil {
		t.Fatalf("seed.Load failed: %v", err)
	}

	landRisk := data.LandRisk[:1]
	src := &mockSource{landRisk: landRisk, collisionsErr: errors.New("502 bad gateway")}

	store := NewStore(nil)
	mgr := NewManager(testConfig(), src, store, nil, nil)
	mgr.WarmStart(context.Background())

	mgr.poll(context.Background(), sourceMap)

	snap := store.Snapshot()
	if !snap.Live {
		t.Error("expected store to be marked live after land risk was applied")
	}
	if len(snap.LandRisk) != 1 || snap.LandRisk[0].ID != landRisk[0].ID {
		t.Errorf("expected fetched land risk to be applied, got %+v", snap.LandRisk)
	}
}

func TestManager_PersistsAndRecordsCollisions(t *testing.T) {
	data, err := seed.Load()
	if err != nil {
		t.Fatalf("seed.Load failed: %v", err)
	}

	heading, speed := 90.0, 10.0
	src := &mockSource{
		fleet: data.Drones,
		threats: []models.Threat{
			{ID: "STRK-100", Lng: 23.7, Lat: 38.0, RadiusKm: 30, Level: models.ThreatLevelCritical, Heading: &heading, SpeedKmh: &speed},
		},
		landRisk:    data.LandRisk,
		predictions: data.Predictions,
	}

	repo := newMockRepo()
	store := NewStore(nil)
	mgr := NewManager(testConfig(), src, store, repo, repo)
	mgr.WarmStart(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// every poller runs its initial poll before observing cancellation
	cancel()
	mgr.Stop()

	for _, kind := range []repository.SnapshotKind{repository.KindFleet, repository.KindThreats, repository.KindLandRisk, repository.KindPredictions} {
		if _, err := repo.LatestSnapshot(context.Background(), kind); err != nil {
			t.Errorf("expected %s snapshot to be persisted: %v", kind, err)
		}
	}

	events, _ := repo.ListCollisionEvents(context.Background(), repository.Filter{})
	if len(events) != 1 || events[0].ThreatID != "STRK-100" {
		t.Fatalf("expected one collision event for STRK-100, got %+v", events)
	}
	if events[0].Severity != models.ThreatLevelCritical {
		t.Errorf("expected critical severity, got %s", events[0].Severity)
	}
}

func TestManager_PurgeUsesRetention(t *testing.T) {
	repo := newMockRepo()
	mgr := NewManager(testConfig(), &mockSource{}, NewStore(nil), repo, repo)

	mgr.purge()

	if repo.purged.Load() != 1 {
		t.Errorf("expected one purge call, got %d", repo.purged.Load())
	}
}

func TestManager_InvalidPurgeSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Retention.PurgeSchedule = "whenever"

	repo := newMockRepo()
	mgr := NewManager(cfg, &mockSource{}, NewStore(nil), repo, repo)

	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid purge schedule")
	}
}
