package entities

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"gopkg.in/yaml.v3"
)

// ContentInstance is a concrete object produced from a template.
type ContentInstance struct {
	ID                 string
	TemplateID         string
	IsTemplateInstance bool
	Type               ContentType
	Name               string
	Description        string

	// Fields holds the merged type-specific base fields.
	Fields   map[string]any
	Metadata map[string]any

	// Population is set on world instances only.
	Population *WorldPopulation

	// Components is set on composite instances only and mirrors the
	// template's component ordering.
	Components Groups[*ContentInstance]

	CreatedAt  time.Time
	ModifiedAt *time.Time
}

// Field returns a base field value and whether it is set.
func (c *ContentInstance) Field(key string) (any, bool) {
	v, ok := c.Fields[key]
	return v, ok
}

// Clone returns a deep copy of c.
func (c *ContentInstance) Clone() *ContentInstance {
	if c == nil {
		return nil
	}
	out := *c
	out.Fields = CloneMap(c.Fields)
	out.Metadata = CloneMap(c.Metadata)
	out.Population = c.Population.Clone()
	if c.ModifiedAt != nil {
		modified := *c.ModifiedAt
		out.ModifiedAt = &modified
	}
	if c.Components != nil {
		out.Components = make(Groups[*ContentInstance], len(c.Components))
		for i, group := range c.Components {
			out.Components[i] = Group[*ContentInstance]{Type: group.Type, Items: cloneInstances(group.Items)}
		}
	}
	return &out
}

func (c ContentInstance) toMap() map[string]any {
	m := make(map[string]any, len(c.Fields)+10)
	maps.Copy(m, c.Fields)

	m[KeyID] = c.ID
	if c.TemplateID != "" {
		m[KeyTemplateID] = c.TemplateID
	}
	m[KeyIsTemplateInstance] = c.IsTemplateInstance
	if c.Type != "" {
		m[KeyContentType] = c.Type
	}
	m[KeyName] = c.Name
	if c.Description != "" {
		m[KeyDescription] = c.Description
	}
	if c.Metadata != nil {
		m[KeyMetadata] = c.Metadata
	}
	if c.Population != nil {
		c.Population.putInto(m)
	}
	if c.Components != nil {
		m[KeyComponents] = c.Components
	}
	if !c.CreatedAt.IsZero() {
		m[KeyCreatedAt] = c.CreatedAt
	}
	if c.ModifiedAt != nil {
		m[KeyModifiedAt] = *c.ModifiedAt
	}
	return m
}

func (c *ContentInstance) setField(key string, decode func(any) error) error {
	switch key {
	case KeyID:
		return decode(&c.ID)
	case KeyTemplateID:
		return decode(&c.TemplateID)
	case KeyIsTemplateInstance:
		return decode(&c.IsTemplateInstance)
	case KeyContentType:
		return decode(&c.Type)
	case KeyName:
		return decode(&c.Name)
	case KeyDescription:
		return decode(&c.Description)
	case KeyMetadata:
		return decode(&c.Metadata)
	case KeyNodes, KeyInteractions, KeyCharacters, KeyNodePopulations:
		if c.Population == nil {
			c.Population = &WorldPopulation{}
		}
		return c.Population.setField(key, decode)
	case KeyComponents:
		return decode(&c.Components)
	case KeyCreatedAt:
		return decode(&c.CreatedAt)
	case KeyModifiedAt:
		var modified time.Time
		if err := decode(&modified); err != nil {
			return err
		}
		c.ModifiedAt = &modified
		return nil
	default:
		var v any
		if err := decode(&v); err != nil {
			return err
		}
		if c.Fields == nil {
			c.Fields = make(map[string]any)
		}
		c.Fields[key] = v
		return nil
	}
}

// MarshalJSON encodes the instance as a flat object.
func (c ContentInstance) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.toMap())
}

// UnmarshalJSON decodes a flat instance object.
func (c *ContentInstance) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out ContentInstance
	for _, key := range mapKeys(raw) {
		value := raw[key]
		if err := out.setField(key, func(target any) error {
			return json.Unmarshal(value, target)
		}); err != nil {
			return fmt.Errorf("decoding instance field %q: %w", key, err)
		}
	}
	*c = out
	return nil
}

// MarshalYAML encodes the instance as a flat mapping.
func (c ContentInstance) MarshalYAML() (any, error) {
	return c.toMap(), nil
}

// UnmarshalYAML decodes a flat instance mapping.
func (c *ContentInstance) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("instance must be a mapping (line %d)", node.Line)
	}

	var out ContentInstance
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]
		if err := out.setField(key, value.Decode); err != nil {
			return fmt.Errorf("decoding instance field %q (line %d): %w", key, value.Line, err)
		}
	}
	*c = out
	return nil
}

func cloneInstances(in []*ContentInstance) []*ContentInstance {
	if in == nil {
		return nil
	}
	out := make([]*ContentInstance, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
