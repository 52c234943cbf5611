package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/lore-forge/internal/domain/ports"
	"github.com/ersonp/lore-forge/internal/infrastructure/config"
)

// InitHandler handles workspace initialization.
type InitHandler struct {
	collectionManager ports.CollectionManager
	vectorSize        uint64
}

// NewInitHandler creates a new init handler. collectionManager may be nil
// to skip creating the search collection.
func NewInitHandler(collectionManager ports.CollectionManager, vectorSize uint64) *InitHandler {
	return &InitHandler{
		collectionManager: collectionManager,
		vectorSize:        vectorSize,
	}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath     string
	Library        string
	LibraryPath    string
	CollectionName string
}

// Handle writes the default config and registers the default library.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, fmt.Errorf("lore already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	if _, err := config.Load(basePath); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	libraries, err := config.LoadLibraries(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading libraries: %w", err)
	}

	collection := config.GenerateCollectionName(config.DefaultLibrary)
	if !libraries.Exists(config.DefaultLibrary) {
		libraries.Add(config.DefaultLibrary, config.LibraryEntry{
			Collection:  collection,
			Description: "Default template library",
		})
		if err := libraries.Save(basePath); err != nil {
			return nil, fmt.Errorf("saving libraries: %w", err)
		}
	}

	libraryDir := config.LibraryDir(basePath, config.DefaultLibrary)
	if err := os.MkdirAll(libraryDir, 0755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	if h.collectionManager != nil {
		if err := h.collectionManager.EnsureCollection(ctx, h.vectorSize); err != nil {
			return nil, fmt.Errorf("creating collection: %w", err)
		}
	}

	return &InitResult{
		ConfigPath:     config.ConfigFilePath(basePath),
		Library:        config.DefaultLibrary,
		LibraryPath:    config.SQLitePathForLibrary(basePath, config.DefaultLibrary),
		CollectionName: collection,
	}, nil
}
