package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/mocks"
	"github.com/ersonp/lore-forge/internal/domain/ports"
	"github.com/ersonp/lore-forge/internal/domain/services"
)

func newSearchHandler(index *mocks.TemplateIndex, embedder *mocks.Embedder, templates ...*entities.Template) *SearchHandler {
	store := mocks.NewTemplateStore(templates...)
	return NewSearchHandler(services.NewTemplateSearchService(store, index, embedder))
}

func TestSearchHandler_Handle(t *testing.T) {
	index := &mocks.TemplateIndex{Matches: []ports.TemplateMatch{
		{TemplateID: "village", Type: entities.ContentNode, Name: "Village", Score: 0.9},
	}}
	handler := newSearchHandler(index, &mocks.Embedder{EmbeddingResult: []float32{0.1}}, village())

	result, err := handler.Handle(context.Background(), "quiet village", "", 5)

	require.NoError(t, err)
	assert.Equal(t, "quiet village", result.Query)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "Village", result.Matches[0].Template.Name)
	assert.InDelta(t, 0.9, result.Matches[0].Score, 0.0001)
}

func TestSearchHandler_Handle_UnknownType(t *testing.T) {
	handler := newSearchHandler(&mocks.TemplateIndex{}, &mocks.Embedder{})

	_, err := handler.Handle(context.Background(), "anything", "boat", 5)

	assert.ErrorIs(t, err, entities.ErrUnknownContentType)
}

func TestSearchHandler_Handle_EmbedderError(t *testing.T) {
	handler := newSearchHandler(&mocks.TemplateIndex{}, &mocks.Embedder{Err: errors.New("rate limited")})

	_, err := handler.Handle(context.Background(), "anything", entities.ContentNode, 5)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "searching templates")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSearchHandler_Reindex(t *testing.T) {
	index := &mocks.TemplateIndex{}
	handler := newSearchHandler(index, &mocks.Embedder{EmbeddingResult: []float32{0.1}},
		village(),
		&entities.Template{ID: "smith", Type: entities.ContentCharacter, Name: "Smith"},
	)

	n, err := handler.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = handler.Reindex(context.Background(), entities.ContentCharacter)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, index.Docs, 3)
}
