package handlers

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lore-forge/internal/domain/mocks"
	"github.com/ersonp/lore-forge/internal/infrastructure/config"
)

func TestNewInitHandler(t *testing.T) {
	manager := &mocks.CollectionManager{}

	handler := NewInitHandler(manager, 1536)

	require.NotNil(t, handler)
	assert.Equal(t, manager, handler.collectionManager)
	assert.Equal(t, uint64(1536), handler.vectorSize)
}

func TestInitHandler_Handle_Success(t *testing.T) {
	tmpDir := t.TempDir()
	manager := &mocks.CollectionManager{}

	handler := NewInitHandler(manager, 1536)

	result, err := handler.Handle(t.Context(), tmpDir)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.ConfigPath, "config.yaml")
	assert.Equal(t, config.DefaultLibrary, result.Library)
	assert.Equal(t, "lore_templates_default", result.CollectionName)
	assert.Equal(t, 1, manager.EnsureCollectionCallCount)
	assert.Equal(t, uint64(1536), manager.LastVectorSize)

	assert.True(t, config.Exists(tmpDir))

	libraries, err := config.LoadLibraries(tmpDir)
	require.NoError(t, err)
	entry, err := libraries.Get(config.DefaultLibrary)
	require.NoError(t, err)
	assert.Equal(t, "lore_templates_default", entry.Collection)

	info, err := os.Stat(config.LibraryDir(tmpDir, config.DefaultLibrary))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInitHandler_Handle_WithoutCollectionManager(t *testing.T) {
	tmpDir := t.TempDir()

	handler := NewInitHandler(nil, 0)

	result, err := handler.Handle(t.Context(), tmpDir)

	require.NoError(t, err)
	assert.Equal(t, config.SQLitePathForLibrary(tmpDir, config.DefaultLibrary), result.LibraryPath)
}

func TestInitHandler_Handle_AlreadyInitialized(t *testing.T) {
	tmpDir := t.TempDir()

	err := config.WriteDefault(tmpDir)
	require.NoError(t, err)

	handler := NewInitHandler(&mocks.CollectionManager{}, 1536)

	_, err = handler.Handle(t.Context(), tmpDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestInitHandler_Handle_CollectionError(t *testing.T) {
	tmpDir := t.TempDir()

	manager := &mocks.CollectionManager{
		EnsureCollectionErr: errors.New("connection failed"),
	}

	handler := NewInitHandler(manager, 1536)

	_, err := handler.Handle(t.Context(), tmpDir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating collection")
	assert.Contains(t, err.Error(), "connection failed")
}
