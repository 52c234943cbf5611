package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/lore-forge/internal/application/handlers"
	"github.com/ersonp/lore-forge/internal/domain/services"
	"github.com/ersonp/lore-forge/internal/infrastructure/config"
	embedder "github.com/ersonp/lore-forge/internal/infrastructure/embedder/openai"
	"github.com/ersonp/lore-forge/internal/infrastructure/idgen"
	"github.com/ersonp/lore-forge/internal/infrastructure/logger"
	"github.com/ersonp/lore-forge/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/lore-forge/internal/infrastructure/vectordb/qdrant"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config          *config.Config
	Library         string
	Logger          *logger.Logger
	TemplateHandler *handlers.TemplateHandler
	ImportHandler   *handlers.ImportHandler
	// SearchHandler is nil unless the command asked for search.
	SearchHandler *handlers.SearchHandler
}

// depsOptions selects optional dependencies.
type depsOptions struct {
	// search connects to Qdrant and the embedder so templates are indexed
	// on save, import and delete.
	search bool
}

// withDeps loads config and builds dependencies without the search index,
// then calls the provided function. It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*Deps) error) error {
	return withOptionalDeps(ctx, depsOptions{}, fn)
}

// withSearchDeps is withDeps with the search index wired in.
func withSearchDeps(ctx context.Context, fn func(*Deps) error) error {
	return withOptionalDeps(ctx, depsOptions{search: true}, fn)
}

func withOptionalDeps(ctx context.Context, opts depsOptions, fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	libraries, err := config.LoadLibraries(cwd)
	if err != nil {
		return fmt.Errorf("loading libraries: %w", err)
	}

	library, err := libraries.Get(globalLibrary)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	// Initialize the template store (SQLite)
	sqlitePath := config.SQLitePathForLibrary(cwd, globalLibrary)
	if cfg.SQLite.Path != "" && globalLibrary == config.DefaultLibrary {
		sqlitePath = cfg.SQLite.Path
	}
	store, err := sqlite.NewRepository(config.SQLiteConfig{Path: sqlitePath})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	engine := services.NewTemplateEngine(store, idgen.UUID{},
		services.WithHistoryStore(store),
		services.WithLogger(log.With("library", globalLibrary)),
		services.WithMaxDepth(cfg.Engine.MaxDepth),
		services.WithStrictValidation(cfg.Engine.StrictValidation),
	)

	var search *services.TemplateSearchService
	if opts.search {
		qdrantCfg := cfg.Qdrant
		qdrantCfg.Collection = library.Collection

		index, err := qdrant.NewRepository(qdrantCfg)
		if err != nil {
			return fmt.Errorf("creating qdrant repository: %w", err)
		}
		defer index.Close()

		emb, err := embedder.NewEmbedder(cfg.Embedder)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		if err := index.EnsureCollection(ctx, emb.VectorSize()); err != nil {
			return fmt.Errorf("ensuring qdrant collection: %w", err)
		}

		search = services.NewTemplateSearchService(store, index, emb)
	}

	deps := &Deps{
		Config:          cfg,
		Library:         globalLibrary,
		Logger:          log,
		TemplateHandler: handlers.NewTemplateHandler(engine, store, search),
		ImportHandler: handlers.NewImportHandler(
			services.NewTemplateImportService(store, cfg.Engine.MaxDepth), search),
	}
	if search != nil {
		deps.SearchHandler = handlers.NewSearchHandler(search)
	}

	log.Debug("dependencies ready",
		"library", globalLibrary,
		"sqlite_path", sqlitePath,
		"search", opts.search,
	)

	return fn(deps)
}
