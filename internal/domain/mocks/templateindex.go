package mocks

import (
	"context"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/ports"
)

// TemplateIndex is a mock implementation of ports.TemplateIndex.
// Search returns Matches filtered by type, ignoring the embedding.
type TemplateIndex struct {
	Docs    []ports.IndexedTemplate
	Matches []ports.TemplateMatch
	Err     error

	UpsertCallCount int
	Removed         []string
}

// Upsert records the documents.
func (m *TemplateIndex) Upsert(_ context.Context, docs []ports.IndexedTemplate) error {
	m.UpsertCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.Docs = append(m.Docs, docs...)
	return nil
}

// Search returns the configured matches.
func (m *TemplateIndex) Search(_ context.Context, _ []float32, contentType entities.ContentType, limit int) ([]ports.TemplateMatch, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []ports.TemplateMatch
	for _, match := range m.Matches {
		if contentType != "" && match.Type != contentType {
			continue
		}
		result = append(result, match)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// Remove records the removed template id.
func (m *TemplateIndex) Remove(_ context.Context, templateID string, _ entities.ContentType) error {
	if m.Err != nil {
		return m.Err
	}
	m.Removed = append(m.Removed, templateID)
	return nil
}
