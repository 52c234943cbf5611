package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Group is one entry of an ordered component mapping.
type Group[T any] struct {
	Type  ContentType
	Items []T
}

// Groups is a mapping from content type to an ordered item list that keeps
// the order keys were declared in. It encodes as a JSON/YAML object.
type Groups[T any] []Group[T]

// Get returns the items filed under t, or nil.
func (g Groups[T]) Get(t ContentType) []T {
	for i := range g {
		if g[i].Type == t {
			return g[i].Items
		}
	}
	return nil
}

// Types returns the group keys in declaration order.
func (g Groups[T]) Types() []ContentType {
	types := make([]ContentType, len(g))
	for i := range g {
		types[i] = g[i].Type
	}
	return types
}

// Append adds item under t, creating the group at the end if needed.
func (g *Groups[T]) Append(t ContentType, items ...T) {
	for i := range *g {
		if (*g)[i].Type == t {
			(*g)[i].Items = append((*g)[i].Items, items...)
			return
		}
	}
	*g = append(*g, Group[T]{Type: t, Items: append([]T(nil), items...)})
}

// Ensure creates an empty group for t if none exists.
func (g *Groups[T]) Ensure(t ContentType) {
	for i := range *g {
		if (*g)[i].Type == t {
			return
		}
	}
	*g = append(*g, Group[T]{Type: t, Items: []T{}})
}

// Len returns the total number of items across all groups.
func (g Groups[T]) Len() int {
	n := 0
	for i := range g {
		n += len(g[i].Items)
	}
	return n
}

// MarshalJSON writes groups as an object in declaration order.
func (g Groups[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(g[i].Type))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		items := g[i].Items
		if items == nil {
			items = []T{}
		}
		value, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("encoding %s components: %w", g[i].Type, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping key order.
func (g *Groups[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading components: %w", err)
	}
	if tok == nil {
		*g = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("components must be an object")
	}

	var out Groups[T]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading component key: %w", err)
		}
		key, _ := keyTok.(string)

		var items []T
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("decoding %s components: %w", key, err)
		}
		out.Append(ContentType(key), items...)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading components: %w", err)
	}

	*g = out
	return nil
}

// MarshalYAML writes groups as a mapping node in declaration order.
func (g Groups[T]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i := range g {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(g[i].Type)}

		items := g[i].Items
		if items == nil {
			items = []T{}
		}
		value := &yaml.Node{}
		if err := value.Encode(items); err != nil {
			return nil, fmt.Errorf("encoding %s components: %w", g[i].Type, err)
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping node, keeping key order.
func (g *Groups[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("components must be a mapping (line %d)", node.Line)
	}

	var out Groups[T]
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value

		var items []T
		if err := node.Content[i+1].Decode(&items); err != nil {
			return fmt.Errorf("decoding %s components: %w", key, err)
		}
		out.Append(ContentType(key), items...)
	}

	*g = out
	return nil
}
