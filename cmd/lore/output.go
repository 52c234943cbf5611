package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/infrastructure/parsers"
)

// writeOutput encodes v to w as JSON or YAML.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("invalid format %q, valid formats: %v", format, validFormats)
	}
}

// writeOutputFile writes v to path, or to stdout when path is empty.
func writeOutputFile(path, format string, v any) (err error) {
	if path == "" {
		return writeOutput(os.Stdout, format, v)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	return writeOutput(f, format, v)
}

func validateFormat(format string) error {
	if !slices.Contains(validFormats, format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", format, validFormats)
	}
	return nil
}

// parseContentType validates a --type flag value.
func parseContentType(s string) (entities.ContentType, error) {
	if s == "" {
		return "", errors.New("--type is required (world, node, interaction, character, composite)")
	}
	return entities.ParseContentType(strings.ToLower(s))
}

// parseContentTypes validates a list of --type values. Empty means all.
func parseContentTypes(values []string) ([]entities.ContentType, error) {
	types := make([]entities.ContentType, 0, len(values))
	for _, v := range values {
		t, err := parseContentType(v)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// parseRef parses "type:id".
func parseRef(s string) (entities.DependencyRef, error) {
	typ, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return entities.DependencyRef{}, fmt.Errorf("invalid reference %q (expected type:id)", s)
	}
	t, err := entities.ParseContentType(typ)
	if err != nil {
		return entities.DependencyRef{}, err
	}
	return entities.DependencyRef{ID: id, Type: t}, nil
}

// loadCustomization reads a customization from file (when set) and applies
// --set assignments on top.
func loadCustomization(file string, sets []string) (entities.Customization, error) {
	customization := entities.Customization{}
	if file != "" {
		var fromFile map[string]any
		if err := parsers.DecodeFile(file, &fromFile); err != nil {
			return nil, fmt.Errorf("reading customization file: %w", err)
		}
		for k, v := range fromFile {
			customization[k] = v
		}
	}

	for _, set := range sets {
		if err := applySet(customization, set); err != nil {
			return nil, err
		}
	}
	return customization, nil
}

// applySet applies one "key=value" assignment. Dotted keys address nested
// objects; values are read as YAML scalars, lists or maps, so numbers and
// booleans keep their type.
func applySet(target map[string]any, assignment string) error {
	key, raw, ok := strings.Cut(assignment, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("invalid --set %q (expected key=value)", assignment)
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return fmt.Errorf("invalid --set value for %s: %w", key, err)
	}
	if value == nil && strings.TrimSpace(raw) == "" {
		value = ""
	}

	path := strings.Split(key, ".")
	node := target
	for _, part := range path[:len(path)-1] {
		next, ok := node[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[part] = next
		}
		node = next
	}
	node[path[len(path)-1]] = value
	return nil
}

// readInstance loads a content instance from a JSON or YAML file.
func readInstance(path string) (*entities.ContentInstance, error) {
	var inst entities.ContentInstance
	if err := parsers.DecodeFile(path, &inst); err != nil {
		return nil, fmt.Errorf("reading instance file: %w", err)
	}
	return &inst, nil
}
