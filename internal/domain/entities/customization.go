package entities

// Customization is a caller-supplied partial override shaped like a
// template's body. A key that is present overrides the template value,
// whatever its value.
type Customization map[string]any

// Has reports whether key is present.
func (c Customization) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Object returns the value at key when it is a nested object.
func (c Customization) Object(key string) (map[string]any, bool) {
	return AsObject(c[key])
}

// AsObject reports whether v is a nested object, either a plain
// map[string]any or a Customization, and returns it as a plain map.
func AsObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Customization:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

// String returns the value at key when it is a string.
func (c Customization) String(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// ComponentCustomization returns the customization addressed to a nested
// template of a composite: c["components"][componentType][templateID].
// It returns an empty customization when none is given.
func (c Customization) ComponentCustomization(componentType ContentType, templateID string) Customization {
	components, ok := c.Object(KeyComponents)
	if !ok {
		return Customization{}
	}
	byID, ok := AsObject(components[string(componentType)])
	if !ok {
		return Customization{}
	}
	nested, ok := AsObject(byID[templateID])
	if !ok {
		return Customization{}
	}
	return Customization(nested)
}

// Clone returns a deep copy of c.
func (c Customization) Clone() Customization {
	return Customization(CloneMap(c))
}
