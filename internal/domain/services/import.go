package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/ports"
	"github.com/ersonp/lore-forge/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle templates that already exist
// during import.
type ConflictStrategy string

const (
	// ConflictSkip skips templates that already exist (by id and type).
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite replaces existing templates.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ParseConflictStrategy validates a strategy name.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(s) {
	case ConflictSkip, ConflictOverwrite:
		return ConflictStrategy(s), nil
	default:
		return "", fmt.Errorf("invalid conflict strategy %q (valid: skip, overwrite)", s)
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing templates
}

// ImportError represents a problem with one document during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	// Saved lists the refs written (or that would be written on a dry run).
	Saved []entities.DependencyRef
	// Errors are documents that were rejected.
	Errors []ImportError
	// Warnings are imported documents whose dependencies do not resolve yet.
	Warnings []ImportError
}

// TemplateImportService validates parsed template documents and writes
// them to a template store.
type TemplateImportService struct {
	store    ports.TemplateStore
	maxDepth int
}

// NewTemplateImportService creates a new import service.
func NewTemplateImportService(store ports.TemplateStore, maxDepth int) *TemplateImportService {
	return &TemplateImportService{
		store:    store,
		maxDepth: maxDepth,
	}
}

// Import validates and stores raw templates. Invalid documents are
// reported and skipped; the rest are imported. Dependencies are checked
// against the store together with the batch itself, so documents may
// depend on each other regardless of order.
func (s *TemplateImportService) Import(ctx context.Context, raws []parsers.RawTemplate, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{
		Saved: []entities.DependencyRef{},
	}

	valid, lines, validationErrors := validateRawTemplates(raws)
	result.Errors = validationErrors

	if len(valid) == 0 {
		return result, nil
	}

	toSave, lines, skipped, err := s.filterExisting(ctx, valid, lines, opts.OnConflict)
	if err != nil {
		return nil, err
	}
	result.Skipped = skipped

	result.Warnings, err = s.checkDependencies(ctx, toSave, lines)
	if err != nil {
		return nil, err
	}

	for i := range toSave {
		tpl := toSave[i]
		if !opts.DryRun {
			id, err := s.store.SaveTemplate(ctx, tpl, tpl.Type)
			if err != nil {
				return nil, fmt.Errorf("saving template %s: %w", tpl.Ref(), err)
			}
			tpl.ID = id
		}
		result.Saved = append(result.Saved, tpl.Ref())
		result.Imported++
	}

	return result, nil
}

// validateRawTemplates checks each document and returns the valid ones
// with the source line of each, keyed by position in the returned slice.
func validateRawTemplates(raws []parsers.RawTemplate) ([]*entities.Template, []int, []ImportError) {
	valid := make([]*entities.Template, 0, len(raws))
	lines := make([]int, 0, len(raws))
	var errs []ImportError

	for i := range raws {
		raw := &raws[i]
		lineNum := raw.Line
		if lineNum == 0 {
			lineNum = i + 1
		}

		if err := validateRawTemplate(&raw.Template, lineNum); err != nil {
			errs = append(errs, *err)
			continue
		}

		tpl := raw.Template.Clone()
		valid = append(valid, tpl)
		lines = append(lines, lineNum)
	}

	return valid, lines, errs
}

// validateRawTemplate validates a single document.
func validateRawTemplate(tpl *entities.Template, lineNum int) *ImportError {
	if tpl.Type == "" {
		return &ImportError{Line: lineNum, Field: entities.KeyContentType, Message: "missing required field: contentType"}
	}
	if !tpl.Type.IsValid() {
		return &ImportError{
			Line:    lineNum,
			Field:   entities.KeyContentType,
			Value:   string(tpl.Type),
			Message: fmt.Sprintf("invalid content type %q (valid: world, node, interaction, character, composite)", tpl.Type),
		}
	}
	if strings.TrimSpace(tpl.Name) == "" {
		return &ImportError{Line: lineNum, Field: entities.KeyName, Message: "missing required field: name"}
	}

	for _, dep := range tpl.Dependencies {
		if dep.ID == "" || !dep.Type.IsValid() {
			return &ImportError{
				Line:    lineNum,
				Field:   entities.KeyDependencies,
				Value:   dep.String(),
				Message: fmt.Sprintf("invalid dependency %q", dep.String()),
			}
		}
	}

	if tpl.Type != entities.ContentComposite {
		if len(tpl.Components) > 0 {
			return &ImportError{
				Line:    lineNum,
				Field:   entities.KeyComponents,
				Message: fmt.Sprintf("only composite templates have components, not %s", tpl.Type),
			}
		}
		return nil
	}

	for _, group := range tpl.Components {
		if !group.Type.IsValid() {
			return &ImportError{
				Line:    lineNum,
				Field:   entities.KeyComponents,
				Value:   string(group.Type),
				Message: fmt.Sprintf("invalid component type %q", group.Type),
			}
		}
		for _, item := range group.Items {
			if item.ID == "" {
				return &ImportError{
					Line:    lineNum,
					Field:   entities.KeyComponents,
					Value:   string(group.Type),
					Message: fmt.Sprintf("%s component without an id", group.Type),
				}
			}
		}
	}

	return nil
}

// filterExisting drops templates that already exist when skipping.
func (s *TemplateImportService) filterExisting(
	ctx context.Context,
	templates []*entities.Template,
	lines []int,
	onConflict ConflictStrategy,
) ([]*entities.Template, []int, int, error) {
	if onConflict != ConflictSkip {
		return templates, lines, 0, nil
	}

	toSave := make([]*entities.Template, 0, len(templates))
	kept := make([]int, 0, len(lines))
	var skipped int
	for i, tpl := range templates {
		if tpl.ID != "" {
			existing, err := s.store.GetTemplate(ctx, tpl.ID, tpl.Type)
			if err != nil {
				return nil, nil, 0, fmt.Errorf("checking existing template %s: %w", tpl.Ref(), err)
			}
			if existing != nil {
				skipped++
				continue
			}
		}
		toSave = append(toSave, tpl)
		kept = append(kept, lines[i])
	}

	return toSave, kept, skipped, nil
}

// checkDependencies reports templates whose dependencies cannot be
// resolved from the store plus the batch.
func (s *TemplateImportService) checkDependencies(ctx context.Context, templates []*entities.Template, lines []int) ([]ImportError, error) {
	overlay := newOverlayStore(s.store, templates)
	validator := NewDependencyValidator(overlay, s.maxDepth)

	var warnings []ImportError
	for i, tpl := range templates {
		err := validator.Validate(ctx, tpl)
		if err == nil {
			continue
		}

		var missing *entities.MissingDependencyError
		var cyclic *entities.CyclicDependencyError
		var limit *entities.RecursionLimitError
		if !errors.As(err, &missing) && !errors.As(err, &cyclic) && !errors.As(err, &limit) {
			return nil, fmt.Errorf("checking dependencies of %s: %w", tpl.Ref(), err)
		}
		warnings = append(warnings, ImportError{
			Line:    lines[i],
			Field:   entities.KeyDependencies,
			Value:   tpl.Ref().String(),
			Message: err.Error(),
		})
	}
	return warnings, nil
}

// overlayStore resolves reads from an import batch before falling back to
// the underlying store. Writes go to the underlying store.
type overlayStore struct {
	ports.TemplateStore
	batch map[entities.DependencyRef]*entities.Template
}

func newOverlayStore(base ports.TemplateStore, templates []*entities.Template) *overlayStore {
	batch := make(map[entities.DependencyRef]*entities.Template, len(templates))
	for _, tpl := range templates {
		if tpl.ID != "" {
			batch[tpl.Ref()] = tpl
		}
	}
	return &overlayStore{TemplateStore: base, batch: batch}
}

func (o *overlayStore) GetTemplate(ctx context.Context, id string, contentType entities.ContentType) (*entities.Template, error) {
	if tpl, ok := o.batch[entities.DependencyRef{ID: id, Type: contentType}]; ok {
		return tpl, nil
	}
	return o.TemplateStore.GetTemplate(ctx, id, contentType)
}
