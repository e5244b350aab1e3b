package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/zerostrike/internal/models"
)

var ErrNotFound = errors.New("not found")

// SnapshotKind names one of the polled collections.
type SnapshotKind string

const (
	KindFleet       SnapshotKind = "fleet"
	KindThreats     SnapshotKind = "threats"
	KindLandRisk    SnapshotKind = "land_risk"
	KindPredictions SnapshotKind = "predictions"
)

type Snapshot struct {
	Kind    SnapshotKind
	Payload []byte // JSON-encoded collection
	SavedAt time.Time
}

type Filter struct {
	Limit    int
	Since    *time.Time
	Severity *models.ThreatLevel
	ThreatID string
}

type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, kind SnapshotKind, payload []byte, at time.Time) error
	LatestSnapshot(ctx context.Context, kind SnapshotKind) (*Snapshot, error)
}

type CollisionEventRepository interface {
	AddCollisionEvents(ctx context.Context, events []models.CollisionEvent) error
	ListCollisionEvents(ctx context.Context, opts Filter) ([]models.CollisionEvent, error)
	PurgeBefore(ctx context.Context, t time.Time) (int64, error)
}
