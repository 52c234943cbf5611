package entities

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below matches one of these via errors.Is.
var (
	ErrTemplateNotFound       = errors.New("template not found")
	ErrMissingDependency      = errors.New("missing dependency")
	ErrCyclicDependency       = errors.New("cyclic dependency")
	ErrUnknownContentType     = errors.New("unknown content type")
	ErrValidation             = errors.New("validation failed")
	ErrRecursionLimitExceeded = errors.New("recursion limit exceeded")
	ErrSaveFailure            = errors.New("save failed")
)

// TemplateNotFoundError is returned when a template id does not resolve.
type TemplateNotFoundError struct {
	ID   string
	Type ContentType
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %s (%s)", e.ID, e.Type)
}

func (e *TemplateNotFoundError) Is(target error) bool { return target == ErrTemplateNotFound }

// MissingDependencyError names the first dependency that does not exist.
type MissingDependencyError struct {
	ID   string
	Type ContentType
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency: %s (%s)", e.ID, e.Type)
}

func (e *MissingDependencyError) Is(target error) bool { return target == ErrMissingDependency }

// CyclicDependencyError carries the chain that closed the cycle.
// The last element repeats an earlier one.
type CyclicDependencyError struct {
	Path []DependencyRef
}

func (e *CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, ref := range e.Path {
		parts[i] = ref.String()
	}
	return "cyclic dependency: " + strings.Join(parts, " -> ")
}

func (e *CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }

// UnknownContentTypeError is returned for a type outside the known set.
type UnknownContentTypeError struct {
	Type ContentType
}

func (e *UnknownContentTypeError) Error() string {
	return fmt.Sprintf("unknown content type: %q", string(e.Type))
}

func (e *UnknownContentTypeError) Is(target error) bool { return target == ErrUnknownContentType }

// ValidationError collects every blocking problem found in one pass.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RecursionLimitError is returned when template nesting exceeds the bound.
type RecursionLimitError struct {
	Limit int
	Ref   DependencyRef
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("recursion limit %d exceeded at %s", e.Limit, e.Ref)
}

func (e *RecursionLimitError) Is(target error) bool { return target == ErrRecursionLimitExceeded }

// SaveError wraps a template store failure during save.
type SaveError struct {
	Type  ContentType
	Cause error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %s template: %v", e.Type, e.Cause)
}

func (e *SaveError) Unwrap() error { return e.Cause }

func (e *SaveError) Is(target error) bool { return target == ErrSaveFailure }
