package ports

import (
	"context"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// IndexedTemplate is the searchable projection of a template.
type IndexedTemplate struct {
	TemplateID  string
	Type        entities.ContentType
	Name        string
	Description string
	Embedding   []float32
}

// TemplateMatch is one semantic search hit.
type TemplateMatch struct {
	TemplateID string
	Type       entities.ContentType
	Name       string
	Score      float32
}

// TemplateIndex stores template embeddings for semantic search.
type TemplateIndex interface {
	// Upsert stores or replaces index entries.
	Upsert(ctx context.Context, docs []IndexedTemplate) error

	// Search returns the closest templates. An empty contentType searches all types.
	Search(ctx context.Context, embedding []float32, contentType entities.ContentType, limit int) ([]TemplateMatch, error)

	// Remove deletes the entry for one template.
	Remove(ctx context.Context, templateID string, contentType entities.ContentType) error
}
