package services

import (
	"fmt"
	"time"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/ports"
)

// fieldSpec declares one base field of a content type and its default.
type fieldSpec struct {
	name         string
	defaultValue func() any
}

func objectField(name string) fieldSpec {
	return fieldSpec{name: name, defaultValue: func() any { return map[string]any{} }}
}

func arrayField(name string) fieldSpec {
	return fieldSpec{name: name, defaultValue: func() any { return []any{} }}
}

func scalarField(name string, value any) fieldSpec {
	return fieldSpec{name: name, defaultValue: func() any { return value }}
}

// contentBuilder assembles one concrete content type.
type contentBuilder struct {
	fields []fieldSpec
	// allowCustomID lets a customization pin the instance id.
	allowCustomID bool
	// finish applies type-specific steps after the shared ones.
	finish func(inst *entities.ContentInstance, now time.Time)
}

// builders is the registry the factory dispatches on. Every concrete
// content type has exactly one entry.
var builders = map[entities.ContentType]contentBuilder{
	entities.ContentWorld: {
		fields: []fieldSpec{
			objectField("rules"),
			objectField("initialConditions"),
		},
		finish: func(inst *entities.ContentInstance, now time.Time) {
			inst.Population = entities.NewWorldPopulation()
			modified := now
			inst.ModifiedAt = &modified
		},
	},
	entities.ContentNode: {
		fields: []fieldSpec{
			scalarField("type", "settlement"),
			objectField("environment"),
			objectField("resources"),
			scalarField("capacity", 100),
			arrayField("specialProperties"),
		},
		allowCustomID: true,
	},
	entities.ContentInteraction: {
		fields: []fieldSpec{
			scalarField("type", "social"),
			objectField("requirements"),
			objectField("effects"),
			arrayField("conditions"),
			objectField("modifiers"),
		},
		allowCustomID: true,
	},
	entities.ContentCharacter: {
		fields: []fieldSpec{
			objectField("attributes"),
			objectField("personality"),
			objectField("capabilities"),
			scalarField("background", ""),
			arrayField("history"),
			objectField("relationships"),
			arrayField("goals"),
			arrayField("motivations"),
		},
		allowCustomID: true,
	},
}

// reservedKeys are customization keys that never become base fields.
var reservedKeys = map[string]bool{
	entities.KeyID:                      true,
	entities.KeyContentType:             true,
	entities.KeyName:                    true,
	entities.KeyDescription:             true,
	entities.KeyMetadata:                true,
	entities.KeyComponents:              true,
	entities.KeyDependencies:            true,
	entities.KeyTemplateID:              true,
	entities.KeyIsTemplateInstance:      true,
	entities.KeyNodes:                   true,
	entities.KeyInteractions:            true,
	entities.KeyCharacters:              true,
	entities.KeyNodePopulations:         true,
	entities.KeyNodePopulationStructure: true,
	entities.KeyCreatedAt:               true,
	entities.KeyUpdatedAt:               true,
	entities.KeyModifiedAt:              true,
}

// ContentFactory builds concrete content instances from a template and a
// customization.
type ContentFactory struct {
	ids   ports.IDGenerator
	clock func() time.Time
}

// NewContentFactory creates a ContentFactory.
func NewContentFactory(ids ports.IDGenerator, clock func() time.Time) *ContentFactory {
	if clock == nil {
		clock = time.Now
	}
	return &ContentFactory{
		ids:   ids,
		clock: clock,
	}
}

// Build assembles an instance of contentType. Composite content is not
// handled here; it fails with *entities.UnknownContentTypeError like any
// other type without a builder.
func (f *ContentFactory) Build(
	template *entities.Template,
	customization entities.Customization,
	contentType entities.ContentType,
) (*entities.ContentInstance, error) {
	b, ok := builders[contentType]
	if !ok {
		return nil, &entities.UnknownContentTypeError{Type: contentType}
	}

	now := f.clock()
	inst := f.newShell(template, customization, contentType, now, b.allowCustomID)
	inst.Fields = resolveFields(b.fields, template.Fields, customization)
	if b.finish != nil {
		b.finish(inst, now)
	}
	return inst, nil
}

// newShell fills the fields every instance shares: identity, back
// reference, name, description, metadata and creation time.
func (f *ContentFactory) newShell(
	template *entities.Template,
	customization entities.Customization,
	contentType entities.ContentType,
	now time.Time,
	allowCustomID bool,
) *entities.ContentInstance {
	id := ""
	if allowCustomID {
		id, _ = customization.String(entities.KeyID)
	}
	if id == "" {
		id = f.ids.NewID()
	}

	return &entities.ContentInstance{
		ID:                 id,
		TemplateID:         template.ID,
		IsTemplateInstance: true,
		Type:               contentType,
		Name:               overrideString(customization, entities.KeyName, template.Name),
		Description:        overrideString(customization, entities.KeyDescription, template.Description),
		Metadata:           resolveMetadata(template.Metadata, customization),
		CreatedAt:          now,
	}
}

// resolveFields computes the effective base fields. A present
// customization key always wins: objects merge onto the template value,
// anything else replaces it. Absent keys fall back to the template value,
// then to the declared default. Template fields outside the schema are
// carried over unchanged.
func resolveFields(specs []fieldSpec, base map[string]any, customization entities.Customization) map[string]any {
	fields := entities.CloneMap(base)
	if fields == nil {
		fields = make(map[string]any, len(specs))
	}

	for key, value := range customization {
		if reservedKeys[key] {
			continue
		}
		fields[key] = overrideValue(fields[key], value)
	}

	for _, spec := range specs {
		if _, ok := fields[spec.name]; !ok {
			fields[spec.name] = spec.defaultValue()
		}
	}
	return fields
}

// overrideValue applies one customization value over the current one.
func overrideValue(current, value any) any {
	if obj, ok := entities.AsObject(value); ok {
		base, _ := entities.AsObject(current)
		return Merge(base, obj)
	}
	return entities.CloneValue(value)
}

func resolveMetadata(base map[string]any, customization entities.Customization) map[string]any {
	value, ok := customization[entities.KeyMetadata]
	if !ok {
		return entities.CloneMap(base)
	}
	merged, _ := overrideValue(base, value).(map[string]any)
	return merged
}

// overrideString returns the customization's value for key when present,
// else fallback. Non-string values are formatted; nil becomes "".
func overrideString(customization entities.Customization, key, fallback string) string {
	value, ok := customization[key]
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
