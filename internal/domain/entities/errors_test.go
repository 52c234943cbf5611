package entities

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_MatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"template not found", &TemplateNotFoundError{ID: "t", Type: ContentNode}, ErrTemplateNotFound},
		{"missing dependency", &MissingDependencyError{ID: "ghost", Type: ContentNode}, ErrMissingDependency},
		{"cyclic dependency", &CyclicDependencyError{}, ErrCyclicDependency},
		{"unknown content type", &UnknownContentTypeError{Type: "vehicle"}, ErrUnknownContentType},
		{"validation", &ValidationError{Errors: []string{"x"}}, ErrValidation},
		{"recursion limit", &RecursionLimitError{Limit: 3}, ErrRecursionLimitExceeded},
		{"save failure", &SaveError{Type: ContentWorld, Cause: errors.New("disk full")}, ErrSaveFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("resolving: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
		})
	}
}

func TestCyclicDependencyError_Message(t *testing.T) {
	err := &CyclicDependencyError{Path: []DependencyRef{
		{ID: "A", Type: ContentNode},
		{ID: "B", Type: ContentNode},
		{ID: "A", Type: ContentNode},
	}}
	assert.Equal(t, "cyclic dependency: node:A -> node:B -> node:A", err.Error())
}

func TestSaveError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &SaveError{Type: ContentNode, Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestParseContentType(t *testing.T) {
	ct, err := ParseContentType("composite")
	assert.NoError(t, err)
	assert.Equal(t, ContentComposite, ct)
	assert.False(t, ct.IsConcrete())

	_, err = ParseContentType("vehicle")
	assert.ErrorIs(t, err, ErrUnknownContentType)
}
