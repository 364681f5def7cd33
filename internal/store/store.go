// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrConflict is returned when a unique column already holds the value.
	ErrConflict = errors.New("already exists")
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Store wraps SQLite access for users and their progress.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS progress (
			username TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_progress_updated_at ON progress(updated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func (s *Store) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			// Best-effort rollback.
			_ = rerr
		}
		return err
	}
	return tx.Commit()
}
