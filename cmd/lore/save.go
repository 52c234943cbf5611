package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/lore-forge/internal/application/handlers"
	"github.com/ersonp/lore-forge/internal/domain/entities"
)

type templateMetaFlags struct {
	id          string
	name        string
	description string
	dependsOn   []string
	attributes  []string
	index       bool
}

func (f *templateMetaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.id, "id", "", "Template id (default: generated)")
	cmd.Flags().StringVar(&f.name, "name", "", "Template name (default: the instance name)")
	cmd.Flags().StringVar(&f.description, "description", "", "Template description")
	cmd.Flags().StringArrayVar(&f.dependsOn, "depends-on", nil, "Dependency as type:id (repeatable)")
	cmd.Flags().StringArrayVar(&f.attributes, "meta", nil, "Metadata attribute key=value (repeatable)")
	cmd.Flags().BoolVar(&f.index, "index", false, "Add the new template to the search index")
}

func (f *templateMetaFlags) metadata() (entities.TemplateMetadata, error) {
	meta := entities.TemplateMetadata{
		ID:          f.id,
		Name:        f.name,
		Description: f.description,
	}

	for _, s := range f.dependsOn {
		ref, err := parseRef(s)
		if err != nil {
			return meta, err
		}
		meta.Dependencies = append(meta.Dependencies, ref)
	}

	if len(f.attributes) > 0 {
		meta.Attributes = map[string]any{}
		for _, s := range f.attributes {
			if err := applySet(meta.Attributes, s); err != nil {
				return meta, err
			}
		}
	}
	return meta, nil
}

func (f *templateMetaFlags) withFn() func(*cobra.Command, func(*Deps) error) error {
	return func(cmd *cobra.Command, fn func(*Deps) error) error {
		if f.index {
			return withSearchDeps(cmd.Context(), fn)
		}
		return withDeps(cmd.Context(), fn)
	}
}

func newSaveCmd() *cobra.Command {
	var (
		contentType string
		meta        templateMetaFlags
	)

	cmd := &cobra.Command{
		Use:   "save INSTANCE_FILE",
		Short: "Save a content instance as a new template",
		Long: "Reads a content instance (JSON or YAML), strips instance-only data and stores it " +
			"as a template of the given type.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseContentType(contentType)
			if err != nil {
				return err
			}
			m, err := meta.metadata()
			if err != nil {
				return err
			}
			inst, err := readInstance(args[0])
			if err != nil {
				return err
			}

			return meta.withFn()(cmd, func(d *Deps) error {
				result, err := d.TemplateHandler.Save(cmd.Context(), inst, t, m)
				if result != nil {
					printSaveResult(result)
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", "", "Content type of the new template (required)")
	meta.register(cmd)

	return cmd
}

func newSaveWorldCmd() *cobra.Command {
	var meta templateMetaFlags

	cmd := &cobra.Command{
		Use:   "save-world WORLD_FILE",
		Short: "Save a world and its contents as a composite template",
		Long: "Reads a world instance (JSON or YAML) and stores the world, each of its nodes, " +
			"interactions and characters as templates, bundled in one composite template.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := meta.metadata()
			if err != nil {
				return err
			}
			world, err := readInstance(args[0])
			if err != nil {
				return err
			}

			return meta.withFn()(cmd, func(d *Deps) error {
				result, err := d.TemplateHandler.SaveWorld(cmd.Context(), world, m)
				if result != nil {
					printSaveResult(result)
				}
				return err
			})
		},
	}

	meta.register(cmd)

	return cmd
}

func printSaveResult(result *handlers.SaveResult) {
	fmt.Printf("Saved %s template %s\n", result.Type, result.TemplateID)
	if result.Indexed {
		fmt.Println("Added to search index")
	}
}
