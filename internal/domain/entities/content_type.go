package entities

// ContentType identifies the kind of content a template produces.
type ContentType string

// Known content types. Composite bundles the four concrete kinds.
const (
	ContentWorld       ContentType = "world"
	ContentNode        ContentType = "node"
	ContentInteraction ContentType = "interaction"
	ContentCharacter   ContentType = "character"
	ContentComposite   ContentType = "composite"
)

// ConcreteContentTypes lists the types built directly by the content factory.
var ConcreteContentTypes = []ContentType{
	ContentWorld,
	ContentNode,
	ContentInteraction,
	ContentCharacter,
}

// IsConcrete reports whether t is built by a single-content builder.
func (t ContentType) IsConcrete() bool {
	switch t {
	case ContentWorld, ContentNode, ContentInteraction, ContentCharacter:
		return true
	default:
		return false
	}
}

// IsValid reports whether t is a known content type, composite included.
func (t ContentType) IsValid() bool {
	return t.IsConcrete() || t == ContentComposite
}

// ParseContentType converts a string to a ContentType.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(s)
	if !t.IsValid() {
		return "", &UnknownContentTypeError{Type: t}
	}
	return t, nil
}
