// Package store persists the scratchpad, settings, and daily streak
// history in a single SQLite file.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"lull/log"
	"lull/store/migrations"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Open opens (creating if needed) the database at path, configures the
// connection, and brings the schema up to date.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create database directory %s: %w", dir, err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := migrations.Run(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Info("database ready: " + path)

	return &Store{conn: conn, path: path}, nil
}

// Store wraps the SQLite connection. All methods are safe for use from
// the update loop and background goroutines; SQLite serializes writers.
type Store struct {
	conn *sql.DB
	path string
}

func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Connection returns the underlying handle for tests.
func (s *Store) Connection() *sql.DB {
	return s.conn
}

// DefaultPath places the database next to the other per-user state.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lull", "lull.db"), nil
}
