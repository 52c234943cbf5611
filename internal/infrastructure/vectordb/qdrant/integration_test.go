package qdrant

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/ports"
	"github.com/ersonp/lore-forge/internal/infrastructure/config"
)

const (
	testQdrantHost = "localhost"
	testQdrantPort = 6334
	testCollection = "lore_templates_integration_test"
	testVectorSize = 4
)

// newIntegrationRepo connects to a local Qdrant with a fresh collection.
// Tests using it only run with INTEGRATION_TEST=1.
func newIntegrationRepo(t *testing.T) *Repository {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("set INTEGRATION_TEST=1 to run against a local qdrant")
	}

	repo, err := NewRepository(config.QdrantConfig{
		Host:       testQdrantHost,
		Port:       testQdrantPort,
		Collection: testCollection,
	})
	require.NoError(t, err)

	ctx := context.Background()
	_ = repo.DeleteCollection(ctx) // Ignore error if collection doesn't exist
	require.NoError(t, repo.EnsureCollection(ctx, testVectorSize))

	t.Cleanup(func() {
		_ = repo.DeleteCollection(context.Background())
		repo.Close()
	})
	return repo
}

func TestIntegration_CollectionLifecycle(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// Ensure idempotent - calling EnsureCollection again should not fail
	require.NoError(t, repo.EnsureCollection(ctx, testVectorSize))
}

func TestIntegration_UpsertSearchRemove(t *testing.T) {
	repo := newIntegrationRepo(t)
	ctx := context.Background()

	docs := []ports.IndexedTemplate{
		{TemplateID: "village", Type: entities.ContentNode, Name: "Village", Embedding: []float32{1, 0, 0, 0}},
		{TemplateID: "village", Type: entities.ContentCharacter, Name: "Village Elder", Embedding: []float32{0.9, 0.1, 0, 0}},
		{TemplateID: "harbor", Type: entities.ContentNode, Name: "Harbor", Embedding: []float32{0, 1, 0, 0}},
	}
	require.NoError(t, repo.Upsert(ctx, docs))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count, "same id with different types are distinct points")

	matches, err := repo.Search(ctx, []float32{1, 0, 0, 0}, "", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "village", matches[0].TemplateID)
	assert.Equal(t, entities.ContentNode, matches[0].Type)
	assert.Equal(t, "Village", matches[0].Name)

	nodes, err := repo.Search(ctx, []float32{1, 0, 0, 0}, entities.ContentNode, 10)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	for _, m := range nodes {
		assert.Equal(t, entities.ContentNode, m.Type)
	}

	// Re-indexing overwrites the existing point
	docs[0].Name = "Old Village"
	require.NoError(t, repo.Upsert(ctx, docs[:1]))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	require.NoError(t, repo.Remove(ctx, "village", entities.ContentNode))
	nodes, err = repo.Search(ctx, []float32{1, 0, 0, 0}, entities.ContentNode, 10)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "harbor", nodes[0].TemplateID)
}
