package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

func newSearchCmd() *cobra.Command {
	var (
		contentType string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find templates by meaning",
		Long:  "Searches the library's indexed templates semantically. Run 'lore templates index' first.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var t entities.ContentType
			if contentType != "" {
				parsed, err := parseContentType(contentType)
				if err != nil {
					return err
				}
				t = parsed
			}
			query := strings.Join(args, " ")

			return withSearchDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.SearchHandler.Handle(cmd.Context(), query, t, limit)
				if err != nil {
					return err
				}

				if len(result.Matches) == 0 {
					fmt.Println("No matching templates found.")
					return nil
				}

				fmt.Printf("Found %d templates for %q:\n\n", len(result.Matches), result.Query)
				for _, match := range result.Matches {
					fmt.Printf("[%.3f] %s:%s  %s\n", match.Score, match.Template.Type, match.Template.ID, match.Template.Name)
					if match.Template.Description != "" {
						fmt.Printf("        %s\n", match.Template.Description)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "", "Only search this content type")
	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultSearchLimit, "Maximum number of results")

	return cmd
}
