package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-forge/internal/application/handlers"
	"github.com/ersonp/lore-forge/internal/domain/ports"
	"github.com/ersonp/lore-forge/internal/infrastructure/config"
	embedder "github.com/ersonp/lore-forge/internal/infrastructure/embedder/openai"
	"github.com/ersonp/lore-forge/internal/infrastructure/vectordb/qdrant"
)

func newInitCmd() *cobra.Command {
	var withSearch bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new lore workspace",
		Long: "Creates a .lore directory with default configuration and the default template library. " +
			"With --search it also sets up the library's Qdrant collection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, withSearch)
		},
	}

	cmd.Flags().BoolVar(&withSearch, "search", false, "Create the Qdrant collection for semantic search")

	return cmd
}

func runInit(cmd *cobra.Command, withSearch bool) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	var manager ports.CollectionManager
	vectorSize := uint64(embedder.VectorSize)
	if withSearch {
		// The config file doesn't exist yet, so connect with the defaults.
		cfg := config.Default()
		qdrantCfg := cfg.Qdrant
		qdrantCfg.Collection = config.GenerateCollectionName(config.DefaultLibrary)

		repo, err := qdrant.NewRepository(qdrantCfg)
		if err != nil {
			return fmt.Errorf("connecting to qdrant: %w", err)
		}
		defer repo.Close()
		manager = repo
	}

	result, err := handlers.NewInitHandler(manager, vectorSize).Handle(ctx, cwd)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	fmt.Printf("Created library %q at %s\n", result.Library, result.LibraryPath)
	if withSearch {
		fmt.Printf("Created Qdrant collection: %s\n", result.CollectionName)
	}
	fmt.Println("Lore initialized successfully!")

	return nil
}
