package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// logAction writes an audit log row.
func logAction(ctx context.Context, db execer, action string, ref entities.DependencyRef, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `INSERT INTO audit_log (action, template_id, content_type, details, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, action, ref.ID, string(ref.Type), detailsJSON, timeNow())
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog returns the audit entries for one template, newest first.
func (r *Repository) FindAuditLog(ctx context.Context, templateID string, contentType entities.ContentType) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, template_id, content_type, details, created_at
		FROM audit_log
		WHERE template_id = ? AND content_type = ?
		ORDER BY id DESC
	`
	return r.queryAuditLog(ctx, query, templateID, string(contentType))
}

// FindAuditLogByAction returns the latest entries with one action.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, template_id, content_type, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY id DESC
		LIMIT ?
	`
	return r.queryAuditLog(ctx, query, action, limit)
}

// queryAuditLog is a helper to execute audit log queries.
func (r *Repository) queryAuditLog(ctx context.Context, query string, args ...any) ([]entities.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.AuditEntry, 0, 8)
	for rows.Next() {
		var entry entities.AuditEntry
		var templateID, contentType, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&templateID,
			&contentType,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.TemplateID = templateID.String
		entry.Type = entities.ContentType(contentType.String)

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
