// Package store is the sqlite-backed persistence layer: users, player
// cubes (with game-clock state), ground tiles, and spawned props.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and initializes the
// schema. Pass ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func initPragmas(db *sql.DB) error {
	// WAL suits the mostly-append tick and tile workload.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cubes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			cube_x REAL NOT NULL, cube_y REAL NOT NULL, cube_z REAL NOT NULL,
			camera_x REAL NOT NULL, camera_y REAL NOT NULL, camera_z REAL NOT NULL,
			color TEXT NOT NULL,
			size REAL NOT NULL,
			render_order INTEGER NOT NULL DEFAULT 0,
			total_seconds INTEGER NOT NULL DEFAULT 0,
			remaining_seconds INTEGER NOT NULL DEFAULT 0,
			time_expired INTEGER NOT NULL DEFAULT 0,
			paused INTEGER NOT NULL DEFAULT 0
		);`,
		// Tile id is the per-player recency order: strictly increasing,
		// never reused.
		`CREATE TABLE IF NOT EXISTS tiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			x REAL NOT NULL, z REAL NOT NULL,
			color TEXT NOT NULL,
			size REAL NOT NULL,
			render_order INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tiles_user ON tiles(username, id);`,
		// The unique quadrant index is the world-wide prop exclusivity
		// invariant: at most one live prop per quadrant, across all players.
		`CREATE TABLE IF NOT EXISTS props (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			x REAL NOT NULL, y REAL NOT NULL, z REAL NOT NULL,
			color TEXT NOT NULL,
			size REAL NOT NULL,
			rotation_speed REAL NOT NULL,
			quadrant INTEGER NOT NULL UNIQUE
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}
