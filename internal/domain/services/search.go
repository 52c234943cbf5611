package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/ports"
)

// SearchResult is a template hit with its similarity score.
type SearchResult struct {
	Template entities.Template
	Score    float32
}

// TemplateSearchService indexes templates for semantic lookup.
type TemplateSearchService struct {
	store    ports.TemplateStore
	index    ports.TemplateIndex
	embedder ports.Embedder
}

// NewTemplateSearchService creates a new TemplateSearchService.
func NewTemplateSearchService(
	store ports.TemplateStore,
	index ports.TemplateIndex,
	embedder ports.Embedder,
) *TemplateSearchService {
	return &TemplateSearchService{
		store:    store,
		index:    index,
		embedder: embedder,
	}
}

// Index embeds and stores the given templates.
func (s *TemplateSearchService) Index(ctx context.Context, templates []entities.Template) error {
	if len(templates) == 0 {
		return nil
	}

	texts := make([]string, len(templates))
	for i := range templates {
		texts[i] = searchText(&templates[i])
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("generating embeddings: %w", err)
	}
	if len(embeddings) != len(templates) {
		return fmt.Errorf("embedder returned %d embeddings for %d templates", len(embeddings), len(templates))
	}

	docs := make([]ports.IndexedTemplate, len(templates))
	for i := range templates {
		docs[i] = ports.IndexedTemplate{
			TemplateID:  templates[i].ID,
			Type:        templates[i].Type,
			Name:        templates[i].Name,
			Description: templates[i].Description,
			Embedding:   embeddings[i],
		}
	}

	if err := s.index.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("indexing templates: %w", err)
	}
	return nil
}

// IndexAll indexes every stored template of the given types.
func (s *TemplateSearchService) IndexAll(ctx context.Context, types ...entities.ContentType) (int, error) {
	if len(types) == 0 {
		types = append(append([]entities.ContentType{}, entities.ConcreteContentTypes...), entities.ContentComposite)
	}

	total := 0
	for _, t := range types {
		templates, err := s.store.ListTemplatesByType(ctx, t)
		if err != nil {
			return total, fmt.Errorf("listing %s templates: %w", t, err)
		}
		for i := range templates {
			if templates[i].Type == "" {
				templates[i].Type = t
			}
		}
		if err := s.Index(ctx, templates); err != nil {
			return total, err
		}
		total += len(templates)
	}
	return total, nil
}

// IndexRefs indexes the stored templates behind refs and returns how many
// were indexed. Refs without a stored template are skipped.
func (s *TemplateSearchService) IndexRefs(ctx context.Context, refs []entities.DependencyRef) (int, error) {
	templates := make([]entities.Template, 0, len(refs))
	for _, ref := range refs {
		tpl, err := s.store.GetTemplate(ctx, ref.ID, ref.Type)
		if err != nil {
			return 0, fmt.Errorf("fetching template %s: %w", ref, err)
		}
		if tpl == nil {
			continue
		}
		indexed := *tpl
		if indexed.Type == "" {
			indexed.Type = ref.Type
		}
		templates = append(templates, indexed)
	}

	if err := s.Index(ctx, templates); err != nil {
		return 0, err
	}
	return len(templates), nil
}

// Search finds the templates closest to query. An empty contentType
// searches every type. Hits whose template no longer exists are skipped.
func (s *TemplateSearchService) Search(
	ctx context.Context,
	query string,
	contentType entities.ContentType,
	limit int,
) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is required")
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("generating query embedding: %w", err)
	}

	matches, err := s.index.Search(ctx, embedding, contentType, limit)
	if err != nil {
		return nil, fmt.Errorf("searching templates: %w", err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		tpl, err := s.store.GetTemplate(ctx, match.TemplateID, match.Type)
		if err != nil {
			return nil, fmt.Errorf("fetching template %s: %w", match.TemplateID, err)
		}
		if tpl == nil {
			continue
		}
		results = append(results, SearchResult{Template: *tpl, Score: match.Score})
	}
	return results, nil
}

// Remove drops a template from the index.
func (s *TemplateSearchService) Remove(ctx context.Context, templateID string, contentType entities.ContentType) error {
	if err := s.index.Remove(ctx, templateID, contentType); err != nil {
		return fmt.Errorf("removing template from index: %w", err)
	}
	return nil
}

// searchText is what gets embedded for a template.
func searchText(t *entities.Template) string {
	var b strings.Builder
	b.WriteString(string(t.Type))
	b.WriteString(": ")
	b.WriteString(t.Name)
	if t.Description != "" {
		b.WriteString(". ")
		b.WriteString(t.Description)
	}
	return b.String()
}
