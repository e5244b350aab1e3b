package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mr1hm/zerostrike/internal/config"
	"github.com/mr1hm/zerostrike/internal/metrics"
	"github.com/mr1hm/zerostrike/internal/models"
	"github.com/mr1hm/zerostrike/internal/repository"
	"github.com/mr1hm/zerostrike/internal/seed"
	"github.com/mr1hm/zerostrike/internal/worker"
)

const (
	sourceFleet       = "fleet"
	sourceThreats     = "threats"
	sourcePredictions = "predictions"
	sourceMap         = "map"
	sourceCollisions  = "collisions"

	// collision events wait this long for room in the queue before being dropped
	eventSubmitTimeout = 2 * time.Second
)

type Manager struct {
	cfg       *config.Config
	source    Source
	store     *Store
	snapshots repository.SnapshotRepository
	events    repository.CollisionEventRepository
	pool      *worker.WorkerPool
	cron      *cron.Cron
	wg        sync.WaitGroup
}

// NewManager wires pollers to the store. Either repository may be nil, in
// which case nothing is persisted.
func NewManager(cfg *config.Config, source Source, store *Store, snapshots repository.SnapshotRepository, events repository.CollisionEventRepository) *Manager {
	return &Manager{
		cfg:       cfg,
		source:    source,
		store:     store,
		snapshots: snapshots,
		events:    events,
	}
}

// WarmStart fills the store from persisted snapshots, falling back to the
// embedded seed data for any collection that was never saved.
func (m *Manager) WarmStart(ctx context.Context) error {
	data, err := seed.Load()
	if err != nil {
		return err
	}

	fleet := loadOrSeed(ctx, m.snapshots, repository.KindFleet, data.Drones)
	threats := loadOrSeed(ctx, m.snapshots, repository.KindThreats, data.Threats)
	landRisk := loadOrSeed(ctx, m.snapshots, repository.KindLandRisk, data.LandRisk)
	predictions := loadOrSeed(ctx, m.snapshots, repository.KindPredictions, data.Predictions)

	m.store.Init(fleet, threats, landRisk, predictions)
	slog.Info("store initialized",
		"drones", len(fleet), "threats", len(threats),
		"land_risk", len(landRisk), "predictions", len(predictions))
	return nil
}

func loadOrSeed[T any](ctx context.Context, repo repository.SnapshotRepository, kind repository.SnapshotKind, fallback []T) []T {
	if repo == nil {
		return fallback
	}

	snap, err := repo.LatestSnapshot(ctx, kind)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Warn("error loading snapshot, using seed data", "kind", kind, "error", err)
		}
		return fallback
	}

	var out []T
	if err := json.Unmarshal(snap.Payload, &out); err != nil {
		slog.Warn("corrupt snapshot, using seed data", "kind", kind, "error", err)
		return fallback
	}
	slog.Info("restored snapshot", "kind", kind, "saved_at", snap.SavedAt, "count", len(out))
	return out
}

func (m *Manager) Start(ctx context.Context) error {
	// Persistence outlives ctx so queued jobs drain during shutdown.
	m.pool = worker.NewWorkerPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, m.process)
	m.pool.Start(context.WithoutCancel(ctx))

	m.store.OnCollision(m.recordCollisions)

	if m.events != nil {
		m.cron = cron.New()
		if _, err := m.cron.AddFunc(m.cfg.Retention.PurgeSchedule, m.purge); err != nil {
			m.pool.Stop()
			return fmt.Errorf("error scheduling collision purge: %w", err)
		}
		m.cron.Start()
	}

	pollers := []struct {
		source   string
		interval time.Duration
	}{
		{sourceFleet, m.cfg.Polling.Fleet},
		{sourceThreats, m.cfg.Polling.Threats},
		{sourcePredictions, m.cfg.Polling.Predictions},
		{sourceMap, m.cfg.Polling.Map},
	}
	for _, p := range pollers {
		m.wg.Add(1)
		go m.runPoller(ctx, p.source, p.interval)
	}

	return nil
}

func (m *Manager) runPoller(ctx context.Context, source string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", source, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx, source)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", source)
			return
		case <-ticker.C:
			m.poll(ctx, source)
		}
	}
}

// poll never returns an error: on failure the store keeps its previous data.
func (m *Manager) poll(ctx context.Context, source string) {
	slog.Debug("polling", "source", source)
	start := time.Now()
	metrics.Polls.WithLabelValues(source).Inc()

	var err error
	switch source {
	case sourceFleet:
		err = m.pollFleet(ctx)
	case sourceThreats:
		err = m.pollThreats(ctx)
	case sourcePredictions:
		err = m.pollPredictions(ctx)
	case sourceMap:
		err = m.pollMap(ctx)
	}
	metrics.PollDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	if errors.Is(err, ErrNoUpstream) {
		slog.Debug("no upstream, keeping current data", "source", source)
		return
	}
	if err != nil {
		metrics.PollErrors.WithLabelValues(source).Inc()
		slog.Warn("poll failed, keeping current data", "source", source, "error", err)
		return
	}

	m.store.MarkLive()
	slog.Debug("poll complete", "source", source)
}

func (m *Manager) pollFleet(ctx context.Context) error {
	fleet, err := m.source.FetchFleet(ctx)
	if err != nil {
		return err
	}
	m.store.SetFleet(fleet)
	m.persist(repository.KindFleet, fleet)
	return nil
}

func (m *Manager) pollThreats(ctx context.Context) error {
	threats, err := m.source.FetchThreats(ctx)
	if err != nil {
		return err
	}
	m.store.SetThreats(threats)
	m.persist(repository.KindThreats, threats)
	return nil
}

func (m *Manager) pollPredictions(ctx context.Context) error {
	predictions, err := m.source.FetchPredictions(ctx)
	if err != nil {
		return err
	}
	m.store.SetPredictions(predictions)
	m.persist(repository.KindPredictions, predictions)
	return nil
}

// pollMap refreshes land risk first so a server collision layer, when
// present, is applied on top of the locally recomputed one. Once land risk
// has been applied the poll counts as live even if the collision layer
// cannot be fetched.
func (m *Manager) pollMap(ctx context.Context) error {
	landRisk, err := m.source.FetchLandRisk(ctx)
	if err != nil {
		return err
	}
	m.store.SetLandRisk(landRisk)
	m.persist(repository.KindLandRisk, landRisk)

	collisions, err := m.source.FetchCollisions(ctx)
	switch {
	case errors.Is(err, ErrNoUpstream):
	case err != nil:
		metrics.PollErrors.WithLabelValues(sourceCollisions).Inc()
		slog.Warn("collision layer fetch failed, keeping computed layer", "error", err)
	case collisions != nil:
		m.store.SetServerCollisions(collisions)
	}
	return nil
}

func (m *Manager) persist(kind repository.SnapshotKind, v any) {
	if m.snapshots == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("error encoding snapshot", "kind", kind, "error", err)
		return
	}
	// Snapshot saves never block the poller.
	job := &saveSnapshotJob{kind: kind, payload: payload, at: time.Now()}
	if !m.pool.TrySubmit(job) {
		metrics.JobsDropped.WithLabelValues(job.Name()).Inc()
		slog.Warn("persistence queue full, dropping job", "job", job.Name(), "kind", kind, "pending", m.pool.Pending())
	}
}

func (m *Manager) recordCollisions(entered []models.CollisionEvent) {
	for _, e := range entered {
		slog.Info("threat entered critical zone", "threat_id", e.ThreatID, "severity", e.Severity)
	}
	if m.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), eventSubmitTimeout)
	defer cancel()

	job := &collisionEventsJob{events: entered}
	if !m.pool.Submit(ctx, job) {
		metrics.JobsDropped.WithLabelValues(job.Name()).Inc()
		slog.Warn("persistence queue full, dropping job", "job", job.Name(), "count", len(entered), "pending", m.pool.Pending())
	}
}

func (m *Manager) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-m.cfg.Retention.Collisions)
	n, err := m.events.PurgeBefore(ctx, cutoff)
	if err != nil {
		slog.Error("collision purge failed", "error", err)
		return
	}
	slog.Info("purged collision events", "count", n, "before", cutoff)
}

func (m *Manager) Stop() {
	m.wg.Wait()
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
	if n := m.pool.Pending(); n > 0 {
		slog.Info("draining persistence queue", "pending", n)
	}
	m.pool.Stop()
	slog.Info("ingestion manager stopped")
}
