package services

import "github.com/ersonp/lore-forge/internal/domain/entities"

// Merge returns a new object equal to target with every key of source
// applied on top.
//
// Merge rules:
//   - Objects (map[string]any or entities.Customization) in source merge recursively with the target
//     value at the same key; a missing or non-object target counts as {}.
//   - Everything else (scalars, arrays, nil) replaces the target value.
//     Arrays are never merged element by element.
//   - Keys only present in target are kept.
//
// Neither argument is modified and the result shares no maps or slices
// with them.
func Merge(target, source map[string]any) map[string]any {
	result := entities.CloneMap(target)
	if result == nil {
		result = make(map[string]any, len(source))
	}

	for key, value := range source {
		nested, ok := entities.AsObject(value)
		if !ok {
			result[key] = entities.CloneValue(value)
			continue
		}

		base, _ := entities.AsObject(result[key])
		result[key] = Merge(base, nested)
	}

	return result
}
