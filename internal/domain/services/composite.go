package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// resolution tracks where a CreateFromTemplate call sits inside a
// composite tree.
type resolution struct {
	depth int
	// composites is the chain of composite templates being resolved.
	composites []entities.DependencyRef
}

func (r resolution) enter(ref entities.DependencyRef) resolution {
	return resolution{
		depth:      r.depth + 1,
		composites: append(r.composites[:len(r.composites):len(r.composites)], ref),
	}
}

// createComposite builds the composite shell and resolves every nested
// component template, in declared order, through the engine entry point.
// Nested templates may themselves be composites. Any failure aborts the
// whole composite.
func (e *TemplateEngine) createComposite(
	ctx context.Context,
	template *entities.Template,
	customization entities.Customization,
	res resolution,
) (*entities.ContentInstance, error) {
	ref := template.Ref()
	if slices.Contains(res.composites, ref) {
		path := append(slices.Clone(res.composites), ref)
		return nil, &entities.CyclicDependencyError{Path: path}
	}

	inst := e.factory.newShell(template, customization, entities.ContentComposite, e.clock(), false)
	inst.Fields = resolveFields(nil, template.Fields, customization)
	inst.Fields["type"] = string(entities.ContentComposite)
	inst.Components = make(entities.Groups[*entities.ContentInstance], 0, len(template.Components))

	nested := res.enter(ref)
	for _, group := range template.Components {
		inst.Components.Ensure(group.Type)

		for i := range group.Items {
			component := &group.Items[i]
			componentCustomization := customization.ComponentCustomization(group.Type, component.ID)

			child, err := e.create(ctx, component.ID, componentCustomization, group.Type, nested)
			if err != nil {
				return nil, fmt.Errorf("resolving %s component %s of %s: %w", group.Type, component.ID, ref, err)
			}
			inst.Components.Append(group.Type, child)
		}
	}

	e.logger.Debug("resolved composite",
		"template_id", template.ID,
		"instance_id", inst.ID,
		"components", inst.Components.Len(),
		"depth", res.depth,
	)
	return inst, nil
}
