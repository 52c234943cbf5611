package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// Record appends a customization history entry.
func (r *Repository) Record(ctx context.Context, templateID string, contentType entities.ContentType, entry entities.CustomizationHistoryEntry) error {
	customizations := entry.Customizations
	if customizations == nil {
		customizations = entities.Customization{}
	}
	data, err := json.Marshal(customizations)
	if err != nil {
		return fmt.Errorf("marshaling customizations: %w", err)
	}

	timestamp := entry.Timestamp
	if timestamp.IsZero() {
		timestamp = timeNow()
	}

	query := `
		INSERT INTO customization_history (template_id, content_type, customizations, result_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		templateID,
		string(contentType),
		string(data),
		entry.ResultID,
		timestamp,
	); err != nil {
		return fmt.Errorf("saving customization history: %w", err)
	}
	return nil
}

// History returns the entries for (templateID, contentType) oldest first.
func (r *Repository) History(ctx context.Context, templateID string, contentType entities.ContentType) ([]entities.CustomizationHistoryEntry, error) {
	query := `
		SELECT customizations, result_id, created_at
		FROM customization_history
		WHERE template_id = ? AND content_type = ?
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, templateID, string(contentType))
	if err != nil {
		return nil, fmt.Errorf("querying customization history: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.CustomizationHistoryEntry, 0, 8)
	for rows.Next() {
		var entry entities.CustomizationHistoryEntry
		var data string
		if err := rows.Scan(&data, &entry.ResultID, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &entry.Customizations); err != nil {
			return nil, fmt.Errorf("unmarshaling customizations: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
