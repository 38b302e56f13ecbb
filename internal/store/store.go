// Package store provides SQLite storage for the instrument sample catalog.
// It holds static asset metadata only; play-session state is never persisted.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store represents a SQLite database connection for the instrument catalog.
type Store struct {
	db   *sql.DB
	path string
}

// New creates a new Store with the given database path.
// It opens the database connection, enables foreign keys, and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Instruments table - one row per playable instrument
		`CREATE TABLE IF NOT EXISTS instruments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Samples table - per-pitch sample files for an instrument
		`CREATE TABLE IF NOT EXISTS instrument_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			instrument_id TEXT NOT NULL REFERENCES instruments(id) ON DELETE CASCADE,
			pitch TEXT NOT NULL,
			path TEXT NOT NULL,
			UNIQUE(instrument_id, pitch)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_instrument_samples_instrument_id ON instrument_samples(instrument_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
