package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/services"
)

// SearchHandler handles semantic template search.
type SearchHandler struct {
	searchService *services.TemplateSearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searchService *services.TemplateSearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchResult contains the result of a search.
type SearchResult struct {
	Query   string
	Matches []services.SearchResult
}

// Handle searches templates matching the query. An empty contentType
// searches every type.
func (h *SearchHandler) Handle(ctx context.Context, query string, contentType entities.ContentType, limit int) (*SearchResult, error) {
	if contentType != "" && !contentType.IsValid() {
		return nil, &entities.UnknownContentTypeError{Type: contentType}
	}

	matches, err := h.searchService.Search(ctx, query, contentType, limit)
	if err != nil {
		return nil, fmt.Errorf("searching templates: %w", err)
	}

	return &SearchResult{
		Query:   query,
		Matches: matches,
	}, nil
}

// Reindex indexes every stored template of the given types, or of all
// types when none are given.
func (h *SearchHandler) Reindex(ctx context.Context, types ...entities.ContentType) (int, error) {
	n, err := h.searchService.IndexAll(ctx, types...)
	if err != nil {
		return n, fmt.Errorf("reindexing templates: %w", err)
	}
	return n, nil
}
