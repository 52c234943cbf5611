package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-forge/internal/application/handlers"
	"github.com/ersonp/lore-forge/internal/domain/services"
)

type importFlags struct {
	format     string
	dryRun     bool
	onConflict string
	index      bool
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import templates from JSON, YAML or CSV",
		Long: "Imports templates from a structured file. Documents that fail validation are reported and skipped; " +
			"dependencies that don't resolve yet are reported as warnings.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, yaml, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "skip", "Conflict handling (skip, overwrite)")
	cmd.Flags().BoolVar(&flags.index, "index", false, "Add imported templates to the search index")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	onConflict, err := services.ParseConflictStrategy(flags.onConflict)
	if err != nil {
		return fmt.Errorf("invalid --on-conflict value: %w", err)
	}

	ctx := cmd.Context()
	withFn := withDeps
	if flags.index {
		withFn = withSearchDeps
	}

	return withFn(ctx, func(d *Deps) error {
		opts := handlers.ImportOptions{
			Format:     flags.format,
			DryRun:     flags.dryRun,
			OnConflict: onConflict,
		}

		fmt.Printf("Importing %s...\n", filePath)

		result, err := d.ImportHandler.Handle(ctx, filePath, opts)
		if result != nil {
			printImportResult(result, flags.dryRun)
		}
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		return nil
	})
}

func printImportResult(result *handlers.ImportResult, dryRun bool) {
	if len(result.Errors) > 0 {
		fmt.Printf("\nValidation errors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e.Error())
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\nUnresolved dependencies (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  %s\n", w.Error())
		}
	}

	fmt.Println()
	if dryRun {
		fmt.Printf("Dry run: %d templates would be imported", result.Imported)
	} else {
		fmt.Printf("Imported: %d templates", result.Imported)
	}

	if result.Skipped > 0 {
		fmt.Printf(", %d skipped (already exist)", result.Skipped)
	}

	if len(result.Errors) > 0 {
		fmt.Printf(", %d errors", len(result.Errors))
	}

	if result.Indexed > 0 {
		fmt.Printf(", %d indexed", result.Indexed)
	}

	fmt.Println()
}
