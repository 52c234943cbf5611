package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/services"
	"github.com/ersonp/lore-forge/internal/infrastructure/parsers"
)

// ImportHandler handles importing templates from files.
type ImportHandler struct {
	service *services.TemplateImportService
	search  *services.TemplateSearchService
}

// NewImportHandler creates a new import handler. search may be nil; when
// set, imported templates are indexed.
func NewImportHandler(service *services.TemplateImportService, search *services.TemplateSearchService) *ImportHandler {
	return &ImportHandler{
		service: service,
		search:  search,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format     string                    // "json", "yaml", "csv", or "auto"
	DryRun     bool                      // Validate without saving
	OnConflict services.ConflictStrategy // How to handle existing templates
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Indexed  int
	Saved    []entities.DependencyRef
	Errors   []services.ImportError
	Warnings []services.ImportError
}

// Handle imports templates from a file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	raws, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}

	if len(raws) == 0 {
		return &ImportResult{Saved: []entities.DependencyRef{}}, nil
	}

	serviceOpts := services.ImportOptions{
		DryRun:     opts.DryRun,
		OnConflict: opts.OnConflict,
	}

	serviceResult, err := h.service.Import(ctx, raws, serviceOpts)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Imported: serviceResult.Imported,
		Skipped:  serviceResult.Skipped,
		Saved:    serviceResult.Saved,
		Errors:   serviceResult.Errors,
		Warnings: serviceResult.Warnings,
	}

	if h.search != nil && !opts.DryRun && len(result.Saved) > 0 {
		indexed, err := h.search.IndexRefs(ctx, result.Saved)
		if err != nil {
			return result, fmt.Errorf("indexing imported templates: %w", err)
		}
		result.Indexed = indexed
	}

	return result, nil
}
