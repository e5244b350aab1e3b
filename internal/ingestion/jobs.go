package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/mr1hm/zerostrike/internal/metrics"
	"github.com/mr1hm/zerostrike/internal/models"
	"github.com/mr1hm/zerostrike/internal/repository"
	"github.com/mr1hm/zerostrike/internal/worker"
)

type saveSnapshotJob struct {
	kind    repository.SnapshotKind
	payload []byte
	at      time.Time
}

func (*saveSnapshotJob) Name() string { return "save_snapshot" }

type collisionEventsJob struct {
	events []models.CollisionEvent
}

func (*collisionEventsJob) Name() string { return "collision_events" }

func (m *Manager) process(ctx context.Context, job worker.Job) error {
	switch j := job.(type) {
	case *saveSnapshotJob:
		return m.snapshots.SaveSnapshot(ctx, j.kind, j.payload, j.at)
	case *collisionEventsJob:
		if err := m.events.AddCollisionEvents(ctx, j.events); err != nil {
			return err
		}
		metrics.CollisionEventsRecorded.Add(float64(len(j.events)))
		return nil
	default:
		return fmt.Errorf("unknown job type %T", job)
	}
}
