package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveSnapshot keeps only the latest payload per kind.
func (s *SQLiteDB) SaveSnapshot(ctx context.Context, kind SnapshotKind, payload []byte, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (kind, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`,
		string(kind), payload, at.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error saving %s snapshot: %w", kind, err)
	}
	return nil
}

func (s *SQLiteDB) LatestSnapshot(ctx context.Context, kind SnapshotKind) (*Snapshot, error) {
	var (
		payload []byte
		savedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, saved_at FROM snapshots WHERE kind = ?`, string(kind),
	).Scan(&payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error loading %s snapshot: %w", kind, err)
	}

	return &Snapshot{
		Kind:    kind,
		Payload: payload,
		SavedAt: time.UnixMilli(savedAt).UTC(),
	}, nil
}
