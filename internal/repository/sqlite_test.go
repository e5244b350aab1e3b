package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mr1hm/zerostrike/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func TestSQLiteDB_SnapshotRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	at := time.Date(2024, 10, 29, 12, 0, 0, 0, time.UTC)

	if err := db.SaveSnapshot(ctx, KindFleet, []byte(`[{"id":"ZS-01"}]`), at); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := db.LatestSnapshot(ctx, KindFleet)
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if string(got.Payload) != `[{"id":"ZS-01"}]` {
		t.Errorf("unexpected payload %s", got.Payload)
	}
	if !got.SavedAt.Equal(at) {
		t.Errorf("expected saved_at %v, got %v", at, got.SavedAt)
	}
}

func TestSQLiteDB_SnapshotOverwrite(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	db.SaveSnapshot(ctx, KindThreats, []byte(`[]`), now)
	if err := db.SaveSnapshot(ctx, KindThreats, []byte(`[{"id":"STRK-009"}]`), now.Add(time.Minute)); err != nil {
		t.Fatalf("second SaveSnapshot failed: %v", err)
	}

	got, err := db.LatestSnapshot(ctx, KindThreats)
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if string(got.Payload) != `[{"id":"STRK-009"}]` {
		t.Errorf("expected latest payload, got %s", got.Payload)
	}
}

func TestSQLiteDB_SnapshotNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.LatestSnapshot(context.Background(), KindLandRisk)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteDB_AddCollisionEvents_AssignsIDs(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	events := []models.CollisionEvent{
		{ThreatID: "STRK-009", Severity: models.ThreatLevelCritical, Lng: 23.85, Lat: 38.05, RadiusKm: 42, DetectedAt: time.Now()},
	}

	if err := db.AddCollisionEvents(ctx, events); err != nil {
		t.Fatalf("AddCollisionEvents failed: %v", err)
	}
	if events[0].ID == "" {
		t.Error("expected generated ID")
	}

	got, err := db.ListCollisionEvents(ctx, Filter{})
	if err != nil {
		t.Fatalf("ListCollisionEvents failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].ID != events[0].ID || got[0].Severity != models.ThreatLevelCritical {
		t.Errorf("unexpected event %+v", got[0])
	}
}

func TestSQLiteDB_ListCollisionEvents_WithFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	events := []models.CollisionEvent{
		{ThreatID: "STRK-009", Severity: models.ThreatLevelCritical, DetectedAt: now.Add(-48 * time.Hour)},
		{ThreatID: "STRK-009", Severity: models.ThreatLevelCritical, DetectedAt: now},
		{ThreatID: "STRK-007", Severity: models.ThreatLevelWarning, DetectedAt: now.Add(-time.Hour)},
	}
	if err := db.AddCollisionEvents(ctx, events); err != nil {
		t.Fatalf("AddCollisionEvents failed: %v", err)
	}

	// Severity filter
	critical := models.ThreatLevelCritical
	results, err := db.ListCollisionEvents(ctx, Filter{Severity: &critical})
	if err != nil {
		t.Fatalf("ListCollisionEvents failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 critical events, got %d", len(results))
	}

	// Since filter
	since := now.Add(-2 * time.Hour)
	results, err = db.ListCollisionEvents(ctx, Filter{Since: &since})
	if err != nil {
		t.Fatalf("ListCollisionEvents failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 recent events, got %d", len(results))
	}

	// Threat filter
	results, err = db.ListCollisionEvents(ctx, Filter{ThreatID: "STRK-007"})
	if err != nil {
		t.Fatalf("ListCollisionEvents failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 event for STRK-007, got %d", len(results))
	}

	// Limit keeps the newest
	results, err = db.ListCollisionEvents(ctx, Filter{Limit: 1})
	if err != nil {
		t.Fatalf("ListCollisionEvents failed: %v", err)
	}
	if len(results) != 1 || results[0].ThreatID != "STRK-009" || results[0].DetectedAt.Before(now.Add(-time.Second)) {
		t.Errorf("expected newest event, got %+v", results)
	}
}

func TestSQLiteDB_PurgeBefore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	db.AddCollisionEvents(ctx, []models.CollisionEvent{
		{ThreatID: "old1", Severity: models.ThreatLevelWatch, DetectedAt: now.Add(-100 * time.Hour)},
		{ThreatID: "old2", Severity: models.ThreatLevelWatch, DetectedAt: now.Add(-80 * time.Hour)},
		{ThreatID: "new", Severity: models.ThreatLevelWatch, DetectedAt: now},
	})

	count, err := db.PurgeBefore(ctx, now.Add(-72*time.Hour))
	if err != nil {
		t.Fatalf("PurgeBefore failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows purged, got %d", count)
	}

	remaining, _ := db.ListCollisionEvents(ctx, Filter{})
	if len(remaining) != 1 || remaining[0].ThreatID != "new" {
		t.Errorf("expected only 'new' to remain, got %+v", remaining)
	}
}

func TestSQLiteDB_DuplicateEventID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	e := models.CollisionEvent{ID: "dup_test", ThreatID: "STRK-009", Severity: models.ThreatLevelCritical, DetectedAt: time.Now()}

	if err := db.AddCollisionEvents(ctx, []models.CollisionEvent{e}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := db.AddCollisionEvents(ctx, []models.CollisionEvent{e}); err == nil {
		t.Error("expected error for duplicate ID, got nil")
	}
}
