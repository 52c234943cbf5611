// Package handlers contains application use case handlers.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/ports"
	"github.com/ersonp/lore-forge/internal/domain/services"
)

// dependentsDepth bounds the dependents lookup done before a delete.
const dependentsDepth = 8

// ErrHasDependents is returned when deleting a template others depend on.
var ErrHasDependents = errors.New("template has dependents")

// TemplateHandler handles template resolution and library management.
type TemplateHandler struct {
	engine *services.TemplateEngine
	store  ports.TemplateStore
	search *services.TemplateSearchService
}

// NewTemplateHandler creates a new template handler. search may be nil
// when no search index is configured.
func NewTemplateHandler(
	engine *services.TemplateEngine,
	store ports.TemplateStore,
	search *services.TemplateSearchService,
) *TemplateHandler {
	return &TemplateHandler{
		engine: engine,
		store:  store,
		search: search,
	}
}

// CreateRequest asks for content built from a stored template.
type CreateRequest struct {
	TemplateID    string
	Type          entities.ContentType
	Customization entities.Customization
}

// Create builds a content instance from a template.
func (h *TemplateHandler) Create(ctx context.Context, req CreateRequest) (*entities.ContentInstance, error) {
	if strings.TrimSpace(req.TemplateID) == "" {
		return nil, errors.New("template id is required")
	}
	customization := req.Customization
	if customization == nil {
		customization = entities.Customization{}
	}
	return h.engine.CreateFromTemplate(ctx, req.TemplateID, customization, req.Type)
}

// SaveResult reports a stored template.
type SaveResult struct {
	TemplateID string
	Type       entities.ContentType
	// Indexed is true when the template was added to the search index.
	Indexed bool
}

// Save stores an instance as a template of contentType.
func (h *TemplateHandler) Save(
	ctx context.Context,
	inst *entities.ContentInstance,
	contentType entities.ContentType,
	meta entities.TemplateMetadata,
) (*SaveResult, error) {
	id, err := h.engine.SaveAsTemplate(ctx, inst, contentType, meta)
	if err != nil {
		return nil, err
	}
	return h.saved(ctx, id, contentType)
}

// SaveWorld stores a world and its population as a composite template.
func (h *TemplateHandler) SaveWorld(
	ctx context.Context,
	world *entities.ContentInstance,
	meta entities.TemplateMetadata,
) (*SaveResult, error) {
	id, err := h.engine.SaveWorldAsCompositeTemplate(ctx, world, meta)
	if err != nil {
		return nil, err
	}
	return h.saved(ctx, id, entities.ContentComposite)
}

// saved indexes a freshly stored template when search is configured.
// Indexing failures do not undo the save.
func (h *TemplateHandler) saved(ctx context.Context, id string, contentType entities.ContentType) (*SaveResult, error) {
	result := &SaveResult{TemplateID: id, Type: contentType}
	if h.search == nil {
		return result, nil
	}

	n, err := h.search.IndexRefs(ctx, []entities.DependencyRef{{ID: id, Type: contentType}})
	if err != nil {
		return result, fmt.Errorf("template %s saved but not indexed: %w", id, err)
	}
	result.Indexed = n > 0
	return result, nil
}

// Show returns one stored template.
func (h *TemplateHandler) Show(ctx context.Context, id string, contentType entities.ContentType) (*entities.Template, error) {
	if !contentType.IsValid() {
		return nil, &entities.UnknownContentTypeError{Type: contentType}
	}
	tpl, err := h.store.GetTemplate(ctx, id, contentType)
	if err != nil {
		return nil, fmt.Errorf("fetching template: %w", err)
	}
	if tpl == nil {
		return nil, &entities.TemplateNotFoundError{ID: id, Type: contentType}
	}
	return tpl, nil
}

// List returns stored templates of the given types, or of every type when
// none are given.
func (h *TemplateHandler) List(ctx context.Context, types ...entities.ContentType) ([]entities.Template, error) {
	if len(types) == 0 {
		types = append(append([]entities.ContentType{}, entities.ConcreteContentTypes...), entities.ContentComposite)
	}

	var result []entities.Template
	for _, t := range types {
		templates, err := h.store.ListTemplatesByType(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("listing %s templates: %w", t, err)
		}
		for i := range templates {
			if templates[i].Type == "" {
				templates[i].Type = t
			}
		}
		result = append(result, templates...)
	}
	if result == nil {
		result = []entities.Template{}
	}
	return result, nil
}

// Validate checks customizations against a stored template.
func (h *TemplateHandler) Validate(
	ctx context.Context,
	id string,
	contentType entities.ContentType,
	customization entities.Customization,
) (entities.ValidationResult, error) {
	tpl, err := h.Show(ctx, id, contentType)
	if err != nil {
		return entities.ValidationResult{}, err
	}
	return h.engine.ValidateCustomizations(tpl, customization, contentType), nil
}

// History returns the customizations applied to a template, oldest first.
func (h *TemplateHandler) History(
	ctx context.Context,
	id string,
	contentType entities.ContentType,
) ([]entities.CustomizationHistoryEntry, error) {
	return h.engine.GetCustomizationHistory(ctx, id, contentType)
}

// DeleteResult reports a delete.
type DeleteResult struct {
	Ref entities.DependencyRef
	// Dependents lists templates that still reference the deleted one.
	Dependents []entities.DependencyRef
}

// Delete removes a template. A template other templates depend on is only
// removed when force is set.
func (h *TemplateHandler) Delete(ctx context.Context, id string, contentType entities.ContentType, force bool) (*DeleteResult, error) {
	tpl, err := h.Show(ctx, id, contentType)
	if err != nil {
		return nil, err
	}
	result := &DeleteResult{Ref: entities.DependencyRef{ID: id, Type: contentType}}
	if tpl.ID != "" {
		result.Ref.ID = tpl.ID
	}

	if finder, ok := h.store.(ports.DependentsFinder); ok {
		dependents, err := finder.FindDependents(ctx, id, contentType, dependentsDepth)
		if err != nil {
			return nil, fmt.Errorf("finding dependents: %w", err)
		}
		result.Dependents = dependents
		if len(dependents) > 0 && !force {
			return result, fmt.Errorf("%w: %s is required by %s", ErrHasDependents, result.Ref, joinRefs(dependents))
		}
	}

	if err := h.store.DeleteTemplate(ctx, id, contentType); err != nil {
		return nil, fmt.Errorf("deleting template: %w", err)
	}

	if h.search != nil {
		if err := h.search.Remove(ctx, id, contentType); err != nil {
			return result, fmt.Errorf("template %s deleted: %w", result.Ref, err)
		}
	}
	return result, nil
}

// Audit returns the change log of one template, newest first. It fails
// when the store keeps no audit log.
func (h *TemplateHandler) Audit(ctx context.Context, id string, contentType entities.ContentType) ([]entities.AuditEntry, error) {
	log, ok := h.store.(ports.AuditLog)
	if !ok {
		return nil, errors.New("template store does not keep an audit log")
	}
	entries, err := log.FindAuditLog(ctx, id, contentType)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}

// RecentAudit returns the latest audit entries for one action.
func (h *TemplateHandler) RecentAudit(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	log, ok := h.store.(ports.AuditLog)
	if !ok {
		return nil, errors.New("template store does not keep an audit log")
	}
	entries, err := log.FindAuditLogByAction(ctx, action, limit)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}

func joinRefs(refs []entities.DependencyRef) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = ref.String()
	}
	return strings.Join(parts, ", ")
}
