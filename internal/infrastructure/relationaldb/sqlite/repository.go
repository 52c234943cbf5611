// Package sqlite provides a SQLite implementation of the template store
// and the customization history.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/lore-forge/internal/infrastructure/config"
)

// generateUUID returns a new UUID string.
func generateUUID() string {
	return uuid.New().String()
}

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.TemplateStore and ports.HistoryStore using
// SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection to ":memory:" opens its own empty database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Templates, keyed by (id, content type). data holds the encoded template.
	CREATE TABLE IF NOT EXISTS templates (
		id TEXT NOT NULL,
		content_type TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		data TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (id, content_type)
	);
	CREATE INDEX IF NOT EXISTS idx_templates_type ON templates(content_type);

	-- Declared dependencies, for reverse lookups
	CREATE TABLE IF NOT EXISTS template_dependencies (
		template_id TEXT NOT NULL,
		template_type TEXT NOT NULL,
		dependency_id TEXT NOT NULL,
		dependency_type TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (template_id, template_type, position),
		FOREIGN KEY (template_id, template_type) REFERENCES templates(id, content_type) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_template_dependencies_target ON template_dependencies(dependency_id, dependency_type);

	-- Customization history (append-only)
	CREATE TABLE IF NOT EXISTS customization_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		template_id TEXT NOT NULL,
		content_type TEXT NOT NULL,
		customizations TEXT NOT NULL,
		result_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_customization_history_template ON customization_history(template_id, content_type);

	-- Audit log (tracks template changes)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		template_id TEXT,
		content_type TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_template ON audit_log(template_id, content_type);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
