// Package main provides the entry point for the lore CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-forge/internal/infrastructure/config"
)

var (
	version       = "0.1.0-dev"
	globalLibrary string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := newRootCmd()
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lore",
		Short:         "Resolve and customize world-building templates",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalLibrary, "library", "l", config.DefaultLibrary, "Template library to operate on")

	rootCmd.AddCommand(
		newInitCmd(),
		newLibrariesCmd(),
		newTemplatesCmd(),
		newCreateCmd(),
		newSaveCmd(),
		newSaveWorldCmd(),
		newValidateCmd(),
		newHistoryCmd(),
		newSearchCmd(),
	)

	return rootCmd
}
