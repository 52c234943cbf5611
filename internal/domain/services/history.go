package services

import (
	"context"
	"sync"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// HistoryTracker is the in-memory customization log. Entries live for the
// lifetime of the tracker.
type HistoryTracker struct {
	mu      sync.RWMutex
	entries map[string][]entities.CustomizationHistoryEntry
}

// NewHistoryTracker creates an empty HistoryTracker.
func NewHistoryTracker() *HistoryTracker {
	return &HistoryTracker{
		entries: make(map[string][]entities.CustomizationHistoryEntry),
	}
}

// Record appends a copy of entry under (templateID, contentType).
func (h *HistoryTracker) Record(
	_ context.Context,
	templateID string,
	contentType entities.ContentType,
	entry entities.CustomizationHistoryEntry,
) error {
	entry.Customizations = entry.Customizations.Clone()
	key := entities.HistoryKey(templateID, contentType)

	h.mu.Lock()
	h.entries[key] = append(h.entries[key], entry)
	h.mu.Unlock()
	return nil
}

// History returns a copy of the entries for (templateID, contentType) in
// insertion order. Mutating the result does not affect the tracker.
func (h *HistoryTracker) History(
	_ context.Context,
	templateID string,
	contentType entities.ContentType,
) ([]entities.CustomizationHistoryEntry, error) {
	key := entities.HistoryKey(templateID, contentType)

	h.mu.RLock()
	defer h.mu.RUnlock()

	src := h.entries[key]
	out := make([]entities.CustomizationHistoryEntry, len(src))
	for i := range src {
		out[i] = src[i]
		out[i].Customizations = src[i].Customizations.Clone()
	}
	return out, nil
}
