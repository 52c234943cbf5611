package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		contentType string
		format      string
	)

	cmd := &cobra.Command{
		Use:   "history TEMPLATE_ID",
		Short: "Show the customizations applied to a template, oldest first",
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
				entries, err := d.TemplateHandler.History(cmd.Context(), args[0], t)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Println("No customization history.")
					return nil
				}
				return writeOutputFile("", format, entries)
			})
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "", "Content type (required)")
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "Output format (json, yaml)")

	return cmd
}
