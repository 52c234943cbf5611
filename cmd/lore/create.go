package main

import (
	"github.com/spf13/cobra"

	"github.com/ersonp/lore-forge/internal/application/handlers"
)

type customizationFlags struct {
	file string
	sets []string
}

func (f *customizationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Customization file (JSON or YAML)")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "Override a field: key=value, dotted keys for nested objects (repeatable)")
}

func newCreateCmd() *cobra.Command {
	var (
		contentType   string
		format        string
		output        string
		customization customizationFlags
	)

	cmd := &cobra.Command{
		Use:   "create TEMPLATE_ID",
		Short: "Create content from a template",
		Long: "Resolves a stored template, checks its dependencies and builds a content instance " +
			"with the given customizations applied. Composite templates build every component.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseContentType(contentType)
			if err != nil {
				return err
			}
			if err := validateFormat(format); err != nil {
				return err
			}
			cust, err := loadCustomization(customization.file, customization.sets)
			if err != nil {
				return err
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				inst, err := d.TemplateHandler.Create(cmd.Context(), handlers.CreateRequest{
					TemplateID:    args[0],
					Type:          t,
					Customization: cust,
				})
				if err != nil {
					return err
				}
				return writeOutputFile(output, format, inst)
			})
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "", "Content type (required)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	customization.register(cmd)

	return cmd
}
