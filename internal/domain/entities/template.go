package entities

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Encoded key names shared by templates and instances. Every other key of an
// encoded template or instance is a type-specific base field.
const (
	KeyID                      = "id"
	KeyContentType             = "contentType"
	KeyName                    = "name"
	KeyDescription             = "description"
	KeyMetadata                = "metadata"
	KeyComponents              = "components"
	KeyDependencies            = "dependencies"
	KeyTemplateID              = "templateId"
	KeyIsTemplateInstance      = "isTemplateInstance"
	KeyNodes                   = "nodes"
	KeyInteractions            = "interactions"
	KeyCharacters              = "characters"
	KeyNodePopulations         = "nodePopulations"
	KeyNodePopulationStructure = "nodePopulationStructure"
	KeyCreatedAt               = "createdAt"
	KeyUpdatedAt               = "updatedAt"
	KeyModifiedAt              = "modifiedAt"
)

// DependencyRef points at another template that must exist.
type DependencyRef struct {
	ID   string      `json:"id" yaml:"id"`
	Type ContentType `json:"type" yaml:"type"`
}

// String renders the reference as "type:id".
func (r DependencyRef) String() string {
	return string(r.Type) + ":" + r.ID
}

// Template is a stored, reusable blueprint for one content type.
type Template struct {
	ID          string
	Type        ContentType
	Name        string
	Description string

	// Fields holds the type-specific base fields (rules, environment, ...).
	Fields map[string]any

	// Components is set on composite templates only.
	Components Groups[Template]

	Dependencies []DependencyRef
	Metadata     map[string]any

	// Population is set on world templates produced from a live world.
	// Sanitizing always leaves it empty.
	Population *WorldPopulation

	// NodePopulationStructure keeps a world's node population mapping on
	// composite snapshots so the world can be reassembled.
	NodePopulationStructure map[string][]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ref returns the reference other templates use to depend on t.
func (t *Template) Ref() DependencyRef {
	return DependencyRef{ID: t.ID, Type: t.Type}
}

// Field returns a base field value and whether it is set.
func (t *Template) Field(key string) (any, bool) {
	v, ok := t.Fields[key]
	return v, ok
}

// Body returns the customizable surface of the template as a flat map:
// name, description, metadata and all base fields.
func (t *Template) Body() map[string]any {
	body := make(map[string]any, len(t.Fields)+3)
	for k, v := range t.Fields {
		body[k] = v
	}
	body[KeyName] = t.Name
	if t.Description != "" {
		body[KeyDescription] = t.Description
	}
	if t.Metadata != nil {
		body[KeyMetadata] = t.Metadata
	}
	return body
}

// Clone returns a deep copy of t.
func (t *Template) Clone() *Template {
	out := *t
	out.Fields = CloneMap(t.Fields)
	out.Metadata = CloneMap(t.Metadata)
	out.Dependencies = slices.Clone(t.Dependencies)
	out.Population = t.Population.Clone()
	out.NodePopulationStructure = cloneStringSliceMap(t.NodePopulationStructure)
	if t.Components != nil {
		out.Components = make(Groups[Template], len(t.Components))
		for i, group := range t.Components {
			items := make([]Template, len(group.Items))
			for j := range group.Items {
				items[j] = *group.Items[j].Clone()
			}
			out.Components[i] = Group[Template]{Type: group.Type, Items: items}
		}
	}
	return &out
}

func (t Template) toMap() map[string]any {
	m := make(map[string]any, len(t.Fields)+8)
	maps.Copy(m, t.Fields)

	if t.ID != "" {
		m[KeyID] = t.ID
	}
	if t.Type != "" {
		m[KeyContentType] = t.Type
	}
	m[KeyName] = t.Name
	if t.Description != "" {
		m[KeyDescription] = t.Description
	}
	if t.Components != nil {
		m[KeyComponents] = t.Components
	}
	if len(t.Dependencies) > 0 {
		m[KeyDependencies] = t.Dependencies
	}
	if t.Metadata != nil {
		m[KeyMetadata] = t.Metadata
	}
	if t.Population != nil {
		t.Population.putInto(m)
	}
	if t.NodePopulationStructure != nil {
		m[KeyNodePopulationStructure] = t.NodePopulationStructure
	}
	if !t.CreatedAt.IsZero() {
		m[KeyCreatedAt] = t.CreatedAt
	}
	if !t.UpdatedAt.IsZero() {
		m[KeyUpdatedAt] = t.UpdatedAt
	}
	return m
}

// setField decodes one encoded key into t.
func (t *Template) setField(key string, decode func(any) error) error {
	switch key {
	case KeyID:
		return decode(&t.ID)
	case KeyContentType:
		return decode(&t.Type)
	case KeyName:
		return decode(&t.Name)
	case KeyDescription:
		return decode(&t.Description)
	case KeyComponents:
		return decode(&t.Components)
	case KeyDependencies:
		return decode(&t.Dependencies)
	case KeyMetadata:
		return decode(&t.Metadata)
	case KeyNodes, KeyInteractions, KeyCharacters, KeyNodePopulations:
		if t.Population == nil {
			t.Population = &WorldPopulation{}
		}
		return t.Population.setField(key, decode)
	case KeyNodePopulationStructure:
		return decode(&t.NodePopulationStructure)
	case KeyCreatedAt:
		return decode(&t.CreatedAt)
	case KeyUpdatedAt:
		return decode(&t.UpdatedAt)
	default:
		var v any
		if err := decode(&v); err != nil {
			return err
		}
		if t.Fields == nil {
			t.Fields = make(map[string]any)
		}
		t.Fields[key] = v
		return nil
	}
}

// MarshalJSON encodes the template as a flat object.
func (t Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toMap())
}

// UnmarshalJSON decodes a flat template object.
func (t *Template) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Template
	for _, key := range mapKeys(raw) {
		value := raw[key]
		if err := out.setField(key, func(target any) error {
			return json.Unmarshal(value, target)
		}); err != nil {
			return fmt.Errorf("decoding template field %q: %w", key, err)
		}
	}
	*t = out
	return nil
}

// MarshalYAML encodes the template as a flat mapping.
func (t Template) MarshalYAML() (any, error) {
	return t.toMap(), nil
}

// UnmarshalYAML decodes a flat template mapping.
func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("template must be a mapping (line %d)", node.Line)
	}

	var out Template
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		if err := out.setField(key, value.Decode); err != nil {
			return fmt.Errorf("decoding template field %q (line %d): %w", key, value.Line, err)
		}
	}
	*t = out
	return nil
}

// TemplateMetadata is what a caller supplies when saving an instance as a
// new template.
type TemplateMetadata struct {
	// ID pins the new template's id. Empty lets the store assign one.
	ID           string
	Name         string
	Description  string
	Dependencies []DependencyRef
	// Attributes are merged into the template's metadata.
	Attributes map[string]any
}
