package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/mocks"
	"github.com/ersonp/lore-forge/internal/domain/services"
)

func newImportHandler(store *mocks.TemplateStore) *ImportHandler {
	service := services.NewTemplateImportService(store, services.DefaultMaxDepth)
	return NewImportHandler(service, nil)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportHandler_Handle_JSONFile(t *testing.T) {
	store := mocks.NewTemplateStore()
	handler := newImportHandler(store)

	path := writeFile(t, "templates.json",
		`[{"id": "village", "contentType": "node", "name": "Village", "type": "settlement"}]`)

	result, err := handler.Handle(context.Background(), path, ImportOptions{
		OnConflict: services.ConflictOverwrite,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)
	saved := store.Templates[entities.DependencyRef{ID: "village", Type: entities.ContentNode}]
	require.NotNil(t, saved)
	assert.Equal(t, "settlement", saved.Fields["type"])
}

func TestImportHandler_Handle_YAMLFile(t *testing.T) {
	store := mocks.NewTemplateStore()
	handler := newImportHandler(store)

	path := writeFile(t, "templates.yaml", `
id: village
contentType: node
name: Village
---
id: tavern
contentType: node
name: Tavern
dependencies:
  - id: village
    type: node
`)

	result, err := handler.Handle(context.Background(), path, ImportOptions{
		OnConflict: services.ConflictOverwrite,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.Warnings)
}

func TestImportHandler_Handle_CSVFile(t *testing.T) {
	store := mocks.NewTemplateStore()
	handler := newImportHandler(store)

	path := writeFile(t, "templates.csv", "contentType,name,id\ncharacter,Smith,smith\n")

	result, err := handler.Handle(context.Background(), path, ImportOptions{
		OnConflict: services.ConflictOverwrite,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestImportHandler_Handle_ExplicitFormat(t *testing.T) {
	handler := newImportHandler(mocks.NewTemplateStore())

	// JSON content behind an extension the auto-detection doesn't know
	path := writeFile(t, "templates.txt", `{"contentType": "world", "name": "Eldoria"}`)

	result, err := handler.Handle(context.Background(), path, ImportOptions{
		Format:     "json",
		OnConflict: services.ConflictOverwrite,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestImportHandler_Handle_UnsupportedFormat(t *testing.T) {
	handler := newImportHandler(mocks.NewTemplateStore())

	path := writeFile(t, "templates.xml", "<data/>")

	_, err := handler.Handle(context.Background(), path, ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestImportHandler_Handle_FileNotFound(t *testing.T) {
	handler := newImportHandler(mocks.NewTemplateStore())

	_, err := handler.Handle(context.Background(), "/nonexistent/templates.json", ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening file")
}

func TestImportHandler_Handle_ParseError(t *testing.T) {
	handler := newImportHandler(mocks.NewTemplateStore())

	path := writeFile(t, "broken.json", `[{"contentType": `)

	_, err := handler.Handle(context.Background(), path, ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing file")
}

func TestImportHandler_Handle_DryRun(t *testing.T) {
	store := mocks.NewTemplateStore()
	handler := newImportHandler(store)

	path := writeFile(t, "templates.json", `[{"contentType": "node", "name": "Village"}]`)

	result, err := handler.Handle(context.Background(), path, ImportOptions{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Zero(t, store.SaveCallCount, "SaveTemplate should not be called in dry run")
}

func TestImportHandler_Handle_EmptyFile(t *testing.T) {
	handler := newImportHandler(mocks.NewTemplateStore())

	path := writeFile(t, "empty.json", "[]")

	result, err := handler.Handle(context.Background(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)
}

func TestImportHandler_Handle_IndexesImported(t *testing.T) {
	store := mocks.NewTemplateStore()
	index := &mocks.TemplateIndex{}
	search := services.NewTemplateSearchService(store, index, &mocks.Embedder{EmbeddingResult: []float32{0.5}})
	handler := NewImportHandler(services.NewTemplateImportService(store, 0), search)

	path := writeFile(t, "templates.json", `[
		{"id": "village", "contentType": "node", "name": "Village"},
		{"contentType": "node"}
	]`)

	result, err := handler.Handle(context.Background(), path, ImportOptions{OnConflict: services.ConflictOverwrite})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Indexed)
	assert.Len(t, result.Errors, 1)
	require.Len(t, index.Docs, 1)
	assert.Equal(t, "village", index.Docs[0].TemplateID)
}

func TestImportHandler_Handle_IndexError(t *testing.T) {
	store := mocks.NewTemplateStore()
	index := &mocks.TemplateIndex{Err: errors.New("unavailable")}
	search := services.NewTemplateSearchService(store, index, &mocks.Embedder{EmbeddingResult: []float32{0.5}})
	handler := NewImportHandler(services.NewTemplateImportService(store, 0), search)

	path := writeFile(t, "templates.json", `{"contentType": "node", "name": "Village"}`)

	result, err := handler.Handle(context.Background(), path, ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexing imported templates")
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Imported)
}
