package entities

// ValidationResult is the outcome of checking customizations against a
// template. Errors block instantiation; warnings do not.
type ValidationResult struct {
	IsValid  bool     `json:"isValid" yaml:"isValid"`
	Errors   []string `json:"errors" yaml:"errors"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// Err returns a ValidationError when the result is invalid, else nil.
func (r ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// RequiredFields lists, per content type, the fields that must not be
// blanked out by a customization.
var RequiredFields = map[ContentType][]string{
	ContentWorld:       {KeyName},
	ContentNode:        {KeyName, "type"},
	ContentInteraction: {KeyName, "type"},
	ContentCharacter:   {KeyName},
	ContentComposite:   {KeyName},
}
