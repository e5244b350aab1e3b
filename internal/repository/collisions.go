package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mr1hm/zerostrike/internal/models"
)

// AddCollisionEvents inserts all events in one transaction. Events without an
// ID are assigned a random UUID in place.
func (s *SQLiteDB) AddCollisionEvents(ctx context.Context, events []models.CollisionEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO collision_events (id, threat_id, severity, lng, lat, radius_km, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range events {
		e := &events[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.ThreatID, string(e.Severity), e.Lng, e.Lat, e.RadiusKm, e.DetectedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("error inserting collision event %s: %w", e.ThreatID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing collision events: %w", err)
	}
	return nil
}

// ListCollisionEvents returns events newest first.
func (s *SQLiteDB) ListCollisionEvents(ctx context.Context, opts Filter) ([]models.CollisionEvent, error) {
	query := `SELECT id, threat_id, severity, lng, lat, radius_km, detected_at FROM collision_events`

	var (
		conds []string
		args  []any
	)
	if opts.Since != nil {
		conds = append(conds, "detected_at >= ?")
		args = append(args, opts.Since.UnixMilli())
	}
	if opts.Severity != nil {
		conds = append(conds, "severity = ?")
		args = append(args, string(*opts.Severity))
	}
	if opts.ThreatID != "" {
		conds = append(conds, "threat_id = ?")
		args = append(args, opts.ThreatID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY detected_at DESC, id"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying collision events: %w", err)
	}
	defer rows.Close()

	var events []models.CollisionEvent
	for rows.Next() {
		var (
			e          models.CollisionEvent
			severity   string
			detectedAt int64
		)
		if err := rows.Scan(&e.ID, &e.ThreatID, &severity, &e.Lng, &e.Lat, &e.RadiusKm, &detectedAt); err != nil {
			return nil, fmt.Errorf("error scanning collision event: %w", err)
		}
		e.Severity = models.ThreatLevel(severity)
		e.DetectedAt = time.UnixMilli(detectedAt).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collision events: %w", err)
	}

	return events, nil
}

func (s *SQLiteDB) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM collision_events WHERE detected_at < ?`, t.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("error purging collision events: %w", err)
	}
	return res.RowsAffected()
}
