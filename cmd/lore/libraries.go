package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-forge/internal/infrastructure/config"
	"github.com/ersonp/lore-forge/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/lore-forge/internal/infrastructure/vectordb/qdrant"
)

func newLibrariesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "libraries",
		Short: "Manage template libraries",
		RunE:  runLibrariesList,
	}

	cmd.AddCommand(
		newLibrariesListCmd(),
		newLibrariesCreateCmd(),
		newLibrariesDeleteCmd(),
	)

	return cmd
}

func newLibrariesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all template libraries",
		RunE:  runLibrariesList,
	}
}

func runLibrariesList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	libraries, err := config.LoadLibraries(cwd)
	if err != nil {
		return fmt.Errorf("loading libraries: %w", err)
	}

	names := libraries.Names()
	if len(names) == 0 {
		fmt.Println("No libraries configured.")
		fmt.Println("Use 'lore libraries create NAME' to create a library.")
		return nil
	}

	fmt.Printf("%-20s %-30s %s\n", "NAME", "COLLECTION", "DESCRIPTION")
	fmt.Printf("%-20s %-30s %s\n", "----", "----------", "-----------")

	for _, name := range names {
		entry := libraries.Libraries[name]
		fmt.Printf("%-20s %-30s %s\n", name, entry.Collection, entry.Description)
	}

	return nil
}

func newLibrariesCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new template library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			entry, err := createLibrary(cwd, args[0], description)
			if err != nil {
				return err
			}

			fmt.Printf("Created library %q with collection %q\n", args[0], entry.Collection)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Library description")

	return cmd
}

// createLibrary registers a library and creates its directory.
func createLibrary(basePath, name, description string) (*config.LibraryEntry, error) {
	if !config.Exists(basePath) {
		return nil, fmt.Errorf("lore is not initialized in %s (run 'lore init' first)", basePath)
	}
	sanitized := config.SanitizeLibraryName(name)
	if sanitized == config.DefaultLibrary && name != config.DefaultLibrary {
		return nil, fmt.Errorf("invalid library name %q", name)
	}

	libraries, err := config.LoadLibraries(basePath)
	if err != nil {
		return nil, fmt.Errorf("loading libraries: %w", err)
	}
	if libraries.Exists(name) {
		return nil, fmt.Errorf("library %q already exists", name)
	}
	// Libraries share a directory and collection when their names sanitize alike.
	for _, existing := range libraries.Names() {
		if config.SanitizeLibraryName(existing) == sanitized {
			return nil, fmt.Errorf("library name %q clashes with existing library %q", name, existing)
		}
	}

	entry := config.LibraryEntry{
		Collection:  config.GenerateCollectionName(name),
		Description: description,
	}
	libraries.Add(name, entry)

	if err := os.MkdirAll(config.LibraryDir(basePath, name), 0755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}
	if err := libraries.Save(basePath); err != nil {
		return nil, err
	}

	return &entry, nil
}

func newLibrariesDeleteCmd() *cobra.Command {
	var (
		force      bool
		withSearch bool
	)

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a template library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLibrariesDelete(cmd.Context(), args[0], force, withSearch)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if the library contains templates")
	cmd.Flags().BoolVar(&withSearch, "search", false, "Also drop the library's Qdrant collection")

	return cmd
}

func runLibrariesDelete(ctx context.Context, name string, force, withSearch bool) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	libraries, err := config.LoadLibraries(cwd)
	if err != nil {
		return fmt.Errorf("loading libraries: %w", err)
	}
	entry, err := libraries.Get(name)
	if err != nil {
		return err
	}

	if withSearch {
		cfg, err := config.Load(cwd)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		qdrantCfg := cfg.Qdrant
		qdrantCfg.Collection = entry.Collection

		repo, err := qdrant.NewRepository(qdrantCfg)
		if err != nil {
			return fmt.Errorf("connecting to qdrant: %w", err)
		}
		defer repo.Close()

		if err := repo.DeleteCollection(ctx); err != nil {
			fmt.Printf("Warning: could not delete collection %q: %v\n", entry.Collection, err)
		}
	}

	if err := deleteLibrary(ctx, cwd, name, force); err != nil {
		return err
	}

	fmt.Printf("Deleted library %q\n", name)
	return nil
}

// deleteLibrary unregisters a library and removes its directory. A library
// holding templates is only deleted when force is set.
func deleteLibrary(ctx context.Context, basePath, name string, force bool) error {
	libraries, err := config.LoadLibraries(basePath)
	if err != nil {
		return fmt.Errorf("loading libraries: %w", err)
	}
	if _, err := libraries.Get(name); err != nil {
		return err
	}

	if !force {
		count, err := countLibraryTemplates(ctx, basePath, name)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("library %q contains %d templates, use --force to delete", name, count)
		}
	}

	if err := os.RemoveAll(config.LibraryDir(basePath, name)); err != nil {
		return fmt.Errorf("removing library directory: %w", err)
	}

	libraries.Remove(name)
	return libraries.Save(basePath)
}

// countLibraryTemplates counts the templates stored in a library. A library
// without a database holds none.
func countLibraryTemplates(ctx context.Context, basePath, name string) (int, error) {
	path := config.SQLitePathForLibrary(basePath, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, nil
	}

	store, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	if err != nil {
		return 0, fmt.Errorf("opening library database: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return 0, fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	counts, err := store.CountTemplates(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}
