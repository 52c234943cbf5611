package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-forge/internal/application/handlers"
	"github.com/ersonp/lore-forge/internal/domain/entities"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage the templates of a library",
	}

	cmd.AddCommand(
		newTemplatesListCmd(),
		newTemplatesShowCmd(),
		newImportCmd(),
		newTemplatesExportCmd(),
		newTemplatesDeleteCmd(),
		newTemplatesIndexCmd(),
		newTemplatesAuditCmd(),
	)

	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			contentTypes, err := parseContentTypes(types)
			if err != nil {
				return err
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				templates, err := d.TemplateHandler.List(cmd.Context(), contentTypes...)
				if err != nil {
					return err
				}

				if len(templates) == 0 {
					fmt.Println("No templates found.")
					return nil
				}

				displayTemplates(templates)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Filter by content type (repeatable)")

	return cmd
}

func displayTemplates(templates []entities.Template) {
	fmt.Printf("%-12s %-38s %-30s %s\n", "TYPE", "ID", "NAME", "DEPENDS ON")
	fmt.Printf("%-12s %-38s %-30s %s\n", "----", "--", "----", "----------")

	for _, tpl := range templates {
		deps := make([]string, len(tpl.Dependencies))
		for i, dep := range tpl.Dependencies {
			deps[i] = dep.String()
		}
		fmt.Printf("%-12s %-38s %-30s %s\n", tpl.Type, tpl.ID, tpl.Name, strings.Join(deps, ", "))
	}

	fmt.Printf("\n%d templates\n", len(templates))
}

func newTemplatesShowCmd() *cobra.Command {
	var (
		contentType string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseContentType(contentType)
			if err != nil {
				return err
			}
			if err := validateFormat(format); err != nil {
				return err
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				tpl, err := d.TemplateHandler.Show(cmd.Context(), args[0], t)
				if err != nil {
					return err
				}
				return writeOutputFile("", format, tpl)
			})
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "", "Content type (required)")
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "Output format (json, yaml)")

	return cmd
}

func newTemplatesExportCmd() *cobra.Command {
	var (
		types  []string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export templates to a file",
		Long:  "Exports templates as a JSON array or a YAML list that 'lore templates import' reads back.",
		RunE: func(cmd *cobra.Command, args []string) error {
			contentTypes, err := parseContentTypes(types)
			if err != nil {
				return err
			}
			if err := validateFormat(format); err != nil {
				return err
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				templates, err := d.TemplateHandler.List(cmd.Context(), contentTypes...)
				if err != nil {
					return err
				}
				if len(templates) == 0 {
					return errors.New("no templates found to export")
				}

				if err := writeOutputFile(output, format, templates); err != nil {
					return fmt.Errorf("formatting output: %w", err)
				}
				if output != "" {
					fmt.Printf("Exported %d templates to %s\n", len(templates), output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Filter by content type (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func newTemplatesDeleteCmd() *cobra.Command {
	var (
		contentType string
		force       bool
		index       bool
	)

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a template",
		Long:  "Deletes a template. Templates that other templates depend on are kept unless --force is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseContentType(contentType)
			if err != nil {
				return err
			}

			withFn := withDeps
			if index {
				withFn = withSearchDeps
			}

			return withFn(cmd.Context(), func(d *Deps) error {
				result, err := d.TemplateHandler.Delete(cmd.Context(), args[0], t, force)
				if errors.Is(err, handlers.ErrHasDependents) {
					return fmt.Errorf("%w (use --force to delete anyway)", err)
				}
				if err != nil {
					return err
				}

				fmt.Printf("Deleted template %s\n", result.Ref)
				if len(result.Dependents) > 0 {
					fmt.Printf("Warning: %d templates still depend on it:\n", len(result.Dependents))
					for _, dep := range result.Dependents {
						fmt.Printf("  %s\n", dep)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "", "Content type (required)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if other templates depend on it")
	cmd.Flags().BoolVar(&index, "index", false, "Also remove the template from the search index")

	return cmd
}

func newTemplatesIndexCmd() *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the search index from stored templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			contentTypes, err := parseContentTypes(types)
			if err != nil {
				return err
			}

			return withSearchDeps(cmd.Context(), func(d *Deps) error {
				n, err := d.SearchHandler.Reindex(cmd.Context(), contentTypes...)
				if err != nil {
					return err
				}
				fmt.Printf("Indexed %d templates\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Only index these content types (repeatable)")

	return cmd
}

func newTemplatesAuditCmd() *cobra.Command {
	var (
		contentType string
		action      string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "audit [ID]",
		Short: "Show the change log of a template or of the library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				var (
					entries []entities.AuditEntry
					err     error
				)
				if len(args) == 1 {
					t, perr := parseContentType(contentType)
					if perr != nil {
						return perr
					}
					entries, err = d.TemplateHandler.Audit(cmd.Context(), args[0], t)
				} else {
					entries, err = d.TemplateHandler.RecentAudit(cmd.Context(), action, limit)
				}
				if err != nil {
					return err
				}

				if len(entries) == 0 {
					fmt.Println("No audit entries found.")
					return nil
				}
				for _, entry := range entries {
					fmt.Printf("%s  %-17s %s:%s\n",
						entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Action, entry.Type, entry.TemplateID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "", "Content type (required with ID)")
	cmd.Flags().StringVarP(&action, "action", "a", entities.AuditTemplateSaved, "Action to list without ID (template_saved, template_deleted)")
	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultAuditLimit, "Maximum number of entries without ID")

	return cmd
}
