package services

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// ValidateCustomizations checks customizations against a template without
// building anything. Required fields that are present but blank are
// errors. Keys set on both sides whose value kinds differ are warnings.
// Every problem is reported; validation does not stop at the first one.
// Customizations addressed to a composite's nested templates are checked
// against those templates, with messages prefixed by their path.
func ValidateCustomizations(
	template *entities.Template,
	customization entities.Customization,
	contentType entities.ContentType,
) entities.ValidationResult {
	result := entities.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}
	validateInto(&result, "", template, customization, contentType)
	result.IsValid = len(result.Errors) == 0
	return result
}

func validateInto(
	result *entities.ValidationResult,
	prefix string,
	template *entities.Template,
	customization entities.Customization,
	contentType entities.ContentType,
) {
	if !contentType.IsValid() {
		result.Errors = append(result.Errors, prefix+fmt.Sprintf("unknown content type %q", string(contentType)))
		return
	}

	required := entities.RequiredFields[contentType]
	for _, field := range required {
		if value, ok := customization[field]; ok && isBlank(value) {
			result.Errors = append(result.Errors, prefix+fmt.Sprintf("%s is required and cannot be empty", field))
		}
	}

	body := template.Body()
	keys := make([]string, 0, len(customization))
	for key := range customization {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if slices.Contains(required, key) {
			continue
		}
		value := customization[key]
		if value == nil {
			continue
		}
		current, ok := body[key]
		if !ok || current == nil {
			continue
		}
		if want, got := valueKind(current), valueKind(value); want != got {
			result.Warnings = append(result.Warnings, prefix+fmt.Sprintf("%s: expected %s, got %s", key, want, got))
		}
	}

	if contentType != entities.ContentComposite {
		return
	}
	for _, group := range template.Components {
		for i := range group.Items {
			nested := &group.Items[i]
			nestedCustomization := customization.ComponentCustomization(group.Type, nested.ID)
			if len(nestedCustomization) == 0 {
				continue
			}
			path := fmt.Sprintf("%scomponents.%s.%s: ", prefix, group.Type, nested.ID)
			validateInto(result, path, nested, nestedCustomization, group.Type)
		}
	}
}

// valueKind classifies a decoded value. Integer and float types share the
// "number" kind so JSON and YAML input compare equal.
func valueKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// isBlank reports whether a required value is missing in substance: nil,
// empty or whitespace string, false, zero, or an empty collection.
func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	default:
		return false
	}
}
