package ports

import (
	"context"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// HistoryStore keeps the append-only customization log per
// (template id, content type).
type HistoryStore interface {
	// Record appends an entry.
	Record(ctx context.Context, templateID string, contentType entities.ContentType, entry entities.CustomizationHistoryEntry) error

	// History returns entries in insertion order. The returned slice is
	// owned by the caller.
	History(ctx context.Context, templateID string, contentType entities.ContentType) ([]entities.CustomizationHistoryEntry, error)
}
