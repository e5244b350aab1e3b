package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// :memory: databases are per-connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

// Timestamps are stored as unix milliseconds.
func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			kind TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			saved_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS collision_events (
			id TEXT PRIMARY KEY,
			threat_id TEXT NOT NULL,
			severity TEXT NOT NULL,
			lng REAL NOT NULL,
			lat REAL NOT NULL,
			radius_km REAL NOT NULL,
			detected_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_collision_events_detected_at ON collision_events(detected_at);
		CREATE INDEX IF NOT EXISTS idx_collision_events_threat_id ON collision_events(threat_id);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
