package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var (
		contentType   string
		customization customizationFlags
	)

	cmd := &cobra.Command{
		Use:   "validate TEMPLATE_ID",
		Short: "Check customizations against a template without building anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseContentType(contentType)
			if err != nil {
				return err
			}
			cust, err := loadCustomization(customization.file, customization.sets)
			if err != nil {
				return err
			}

			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.TemplateHandler.Validate(cmd.Context(), args[0], t, cust)
				if err != nil {
					return err
				}

				for _, e := range result.Errors {
					fmt.Printf("error:   %s\n", e)
				}
				for _, w := range result.Warnings {
					fmt.Printf("warning: %s\n", w)
				}

				if !result.IsValid {
					return errors.New("customizations are invalid")
				}
				fmt.Println("Customizations are valid")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "", "Content type (required)")
	customization.register(cmd)

	return cmd
}
