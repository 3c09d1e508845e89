// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides identity/organisation/task persistence with automatic schema creation

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
// Reference sets live in membership tables; insertion order (rowid)
// preserves set ordering.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			gender TEXT NOT NULL,
			organisation TEXT,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			gender TEXT NOT NULL,
			organisation TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS organisations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_organisations_name
			ON organisations(name);

		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			objectives TEXT NOT NULL,
			status TEXT NOT NULL,
			due_date DATETIME NOT NULL,
			assignee TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			priority TEXT NOT NULL,
			type TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_assignee
			ON tasks(assignee);

		CREATE TABLE IF NOT EXISTS user_tasks (
			user_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			UNIQUE(user_id, task_id),
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS admin_tasks (
			admin_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			UNIQUE(admin_id, task_id),
			FOREIGN KEY (admin_id) REFERENCES admins(id)
		);

		CREATE TABLE IF NOT EXISTS organisation_admins (
			org_id TEXT NOT NULL,
			admin_id TEXT NOT NULL,
			UNIQUE(org_id, admin_id),
			FOREIGN KEY (org_id) REFERENCES organisations(id)
		);

		CREATE TABLE IF NOT EXISTS organisation_users (
			org_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			UNIQUE(org_id, user_id),
			FOREIGN KEY (org_id) REFERENCES organisations(id)
		);

		CREATE TABLE IF NOT EXISTS organisation_tasks (
			org_id TEXT NOT NULL,
			task_id TEXT NOT NULL,
			UNIQUE(org_id, task_id),
			FOREIGN KEY (org_id) REFERENCES organisations(id)
		);

		CREATE TABLE IF NOT EXISTS organisation_requests (
			org_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE(org_id, user_id),
			FOREIGN KEY (org_id) REFERENCES organisations(id)
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint failure
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
