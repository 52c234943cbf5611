package services

import (
	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// MetadataKeySourceInstance is set on templates captured from a live
// instance and holds that instance's id.
const MetadataKeySourceInstance = "sourceInstanceId"

// Sanitize turns an instance back into a re-savable template payload. The
// instance-only fields (id, timestamps, template back reference and
// instance flag) are dropped. A world always comes back with an empty
// population. Nested composite components are sanitized recursively and
// keep the id of the template they were built from.
//
// The instance is not modified.
func Sanitize(inst *entities.ContentInstance, contentType entities.ContentType) *entities.Template {
	tpl := &entities.Template{
		Type:        contentType,
		Name:        inst.Name,
		Description: inst.Description,
		Fields:      entities.CloneMap(inst.Fields),
		Metadata:    entities.CloneMap(inst.Metadata),
		Population:  inst.Population.Clone(),
	}

	if contentType == entities.ContentWorld {
		tpl.Population = entities.NewWorldPopulation()
	}

	if contentType == entities.ContentComposite && tpl.Fields != nil {
		delete(tpl.Fields, "type")
	}

	if inst.Components != nil {
		tpl.Components = make(entities.Groups[entities.Template], 0, len(inst.Components))
		for _, group := range inst.Components {
			tpl.Components.Ensure(group.Type)
			for _, child := range group.Items {
				if child == nil {
					continue
				}
				nested := Sanitize(child, group.Type)
				nested.ID = child.TemplateID
				tpl.Components.Append(group.Type, *nested)
			}
		}
	}

	return tpl
}

// applyTemplateMetadata overlays caller-supplied metadata on a sanitized
// template. Non-empty name and description replace; attributes merge.
func applyTemplateMetadata(tpl *entities.Template, meta entities.TemplateMetadata) {
	if meta.ID != "" {
		tpl.ID = meta.ID
	}
	if meta.Name != "" {
		tpl.Name = meta.Name
	}
	if meta.Description != "" {
		tpl.Description = meta.Description
	}
	if meta.Dependencies != nil {
		tpl.Dependencies = append([]entities.DependencyRef(nil), meta.Dependencies...)
	}
	if len(meta.Attributes) > 0 {
		tpl.Metadata = Merge(tpl.Metadata, meta.Attributes)
	}
}
