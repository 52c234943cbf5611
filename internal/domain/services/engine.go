package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/ports"
)

// EngineOption configures a TemplateEngine.
type EngineOption func(*TemplateEngine)

// WithHistoryStore replaces the in-memory customization history.
func WithHistoryStore(history ports.HistoryStore) EngineOption {
	return func(e *TemplateEngine) { e.history = history }
}

// WithLogger sets the engine logger.
func WithLogger(logger ports.Logger) EngineOption {
	return func(e *TemplateEngine) { e.logger = logger }
}

// WithMaxDepth bounds dependency chains and composite nesting.
func WithMaxDepth(depth int) EngineOption {
	return func(e *TemplateEngine) { e.maxDepth = depth }
}

// WithClock sets the time source used for timestamps.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *TemplateEngine) { e.clock = clock }
}

// WithStrictValidation makes CreateFromTemplate reject customizations
// that fail ValidateCustomizations.
func WithStrictValidation(strict bool) EngineOption {
	return func(e *TemplateEngine) { e.strict = strict }
}

// TemplateEngine resolves templates into content instances and turns
// instances back into templates.
type TemplateEngine struct {
	store        ports.TemplateStore
	ids          ports.IDGenerator
	history      ports.HistoryStore
	logger       ports.Logger
	clock        func() time.Time
	maxDepth     int
	strict       bool
	factory      *ContentFactory
	dependencies *DependencyValidator
}

// NewTemplateEngine creates a TemplateEngine over a template store and an
// id generator.
func NewTemplateEngine(store ports.TemplateStore, ids ports.IDGenerator, opts ...EngineOption) *TemplateEngine {
	e := &TemplateEngine{
		store:    store,
		ids:      ids,
		clock:    time.Now,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.history == nil {
		e.history = NewHistoryTracker()
	}
	if e.logger == nil {
		e.logger = nopLogger{}
	}
	if e.maxDepth < 1 {
		e.maxDepth = DefaultMaxDepth
	}

	e.factory = NewContentFactory(ids, e.clock)
	e.dependencies = NewDependencyValidator(store, e.maxDepth)
	return e
}

// CreateFromTemplate builds a content instance from the stored template
// (templateID, contentType) with customization applied. Dependencies are
// validated before anything is built. Composite templates resolve their
// nested components recursively.
//
// It fails with *entities.TemplateNotFoundError,
// *entities.MissingDependencyError, *entities.CyclicDependencyError,
// *entities.UnknownContentTypeError or *entities.RecursionLimitError
// (possibly wrapped; use errors.As).
func (e *TemplateEngine) CreateFromTemplate(
	ctx context.Context,
	templateID string,
	customization entities.Customization,
	contentType entities.ContentType,
) (*entities.ContentInstance, error) {
	return e.create(ctx, templateID, customization, contentType, resolution{})
}

func (e *TemplateEngine) create(
	ctx context.Context,
	templateID string,
	customization entities.Customization,
	contentType entities.ContentType,
	res resolution,
) (*entities.ContentInstance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !contentType.IsValid() {
		return nil, &entities.UnknownContentTypeError{Type: contentType}
	}

	ref := entities.DependencyRef{ID: templateID, Type: contentType}
	if res.depth >= e.maxDepth {
		return nil, &entities.RecursionLimitError{Limit: e.maxDepth, Ref: ref}
	}

	template, err := e.store.GetTemplate(ctx, templateID, contentType)
	if err != nil {
		return nil, fmt.Errorf("fetching template %s: %w", ref, err)
	}
	if template == nil {
		return nil, &entities.TemplateNotFoundError{ID: templateID, Type: contentType}
	}
	if template.Type != contentType {
		template = template.Clone()
		template.Type = contentType
	}

	if err := e.dependencies.Validate(ctx, template); err != nil {
		return nil, fmt.Errorf("validating dependencies of %s: %w", ref, err)
	}

	if e.strict {
		if err := ValidateCustomizations(template, customization, contentType).Err(); err != nil {
			return nil, err
		}
	}

	var inst *entities.ContentInstance
	if contentType == entities.ContentComposite {
		inst, err = e.createComposite(ctx, template, customization, res)
	} else {
		inst, err = e.factory.Build(template, customization, contentType)
	}
	if err != nil {
		return nil, err
	}

	entry := entities.CustomizationHistoryEntry{
		Customizations: customization,
		ResultID:       inst.ID,
		Timestamp:      e.clock(),
	}
	if err := e.history.Record(ctx, templateID, contentType, entry); err != nil {
		return nil, fmt.Errorf("recording customization history for %s: %w", ref, err)
	}

	e.logger.Info("created content from template",
		"template_id", templateID,
		"content_type", string(contentType),
		"instance_id", inst.ID,
	)
	return inst, nil
}

// SaveAsTemplate sanitizes an instance and stores it as a new template of
// contentType, returning the new template id. Store failures come back as
// *entities.SaveError.
func (e *TemplateEngine) SaveAsTemplate(
	ctx context.Context,
	inst *entities.ContentInstance,
	contentType entities.ContentType,
	meta entities.TemplateMetadata,
) (string, error) {
	if inst == nil {
		return "", &entities.ValidationError{Errors: []string{"instance is required"}}
	}
	if !contentType.IsValid() {
		return "", &entities.UnknownContentTypeError{Type: contentType}
	}

	tpl := Sanitize(inst, contentType)
	applyTemplateMetadata(tpl, meta)

	id, err := e.save(ctx, tpl, contentType)
	if err != nil {
		return "", err
	}

	e.logger.Info("saved instance as template",
		"instance_id", inst.ID,
		"content_type", string(contentType),
		"template_id", id,
	)
	return id, nil
}

// SaveWorldAsCompositeTemplate captures a live world as a composite
// template. The world and each of its nodes, interactions and characters
// are sanitized and stored as templates of their own, then referenced, in
// that order, from the composite. The world's node population mapping is
// kept as the composite's NodePopulationStructure.
//
// A failed save deletes the templates already stored for the snapshot.
func (e *TemplateEngine) SaveWorldAsCompositeTemplate(
	ctx context.Context,
	world *entities.ContentInstance,
	meta entities.TemplateMetadata,
) (string, error) {
	if world == nil {
		return "", &entities.ValidationError{Errors: []string{"world instance is required"}}
	}
	if world.Type != "" && world.Type != entities.ContentWorld {
		return "", fmt.Errorf("saving world snapshot: instance %s is a %s, not a world", world.ID, world.Type)
	}

	members := world.Population.Members()
	if members == nil {
		members = entities.NewWorldPopulation().Members()
	}
	if err := checkMembers(members); err != nil {
		return "", err
	}

	composite := &entities.Template{
		Type:                    entities.ContentComposite,
		Name:                    world.Name,
		Description:             world.Description,
		Components:              entities.Groups[entities.Template]{},
		NodePopulationStructure: map[string][]string{},
	}
	saved := make([]entities.DependencyRef, 0, members.Len()+2)

	worldTemplate, err := e.saveComponent(ctx, world, entities.ContentWorld)
	if err != nil {
		return "", err
	}
	saved = append(saved, worldTemplate.Ref())
	composite.Components.Append(entities.ContentWorld, *worldTemplate)

	for _, group := range members {
		composite.Components.Ensure(group.Type)
		for _, member := range group.Items {
			memberTemplate, err := e.saveComponent(ctx, member, group.Type)
			if err != nil {
				return "", e.rollback(ctx, saved, err)
			}
			saved = append(saved, memberTemplate.Ref())
			composite.Components.Append(group.Type, *memberTemplate)
		}
	}

	if world.Population != nil {
		for nodeID, characterIDs := range world.Population.NodePopulations {
			composite.NodePopulationStructure[nodeID] = append([]string{}, characterIDs...)
		}
	}

	applyTemplateMetadata(composite, meta)

	id, err := e.save(ctx, composite, entities.ContentComposite)
	if err != nil {
		return "", e.rollback(ctx, saved, err)
	}

	e.logger.Info("saved world as composite template",
		"world_id", world.ID,
		"template_id", id,
		"components", composite.Components.Len(),
	)
	return id, nil
}

// checkMembers rejects nil entries in a world population.
func checkMembers(members entities.Groups[*entities.ContentInstance]) error {
	var problems []string
	for _, group := range members {
		for i, member := range group.Items {
			if member == nil {
				problems = append(problems, fmt.Sprintf("population %s %d is empty", group.Type, i))
			}
		}
	}
	if len(problems) > 0 {
		return &entities.ValidationError{Errors: problems}
	}
	return nil
}

// rollback deletes the templates stored for a snapshot that failed to
// save, newest first, and returns cause joined with any delete failures.
// Deletion ignores cancellation of ctx.
func (e *TemplateEngine) rollback(ctx context.Context, saved []entities.DependencyRef, cause error) error {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for i := len(saved) - 1; i >= 0; i-- {
		ref := saved[i]
		if err := e.store.DeleteTemplate(ctx, ref.ID, ref.Type); err != nil {
			errs = append(errs, fmt.Errorf("deleting %s: %w", ref, err))
		}
	}
	if len(errs) == 0 {
		return cause
	}

	e.logger.Error("world snapshot rollback incomplete", "templates", len(saved), "failures", len(errs))
	return errors.Join(cause, fmt.Errorf("rolling back world snapshot: %w", errors.Join(errs...)))
}

// saveComponent stores one sanitized member of a world snapshot and
// returns the stored template.
func (e *TemplateEngine) saveComponent(
	ctx context.Context,
	inst *entities.ContentInstance,
	contentType entities.ContentType,
) (*entities.Template, error) {
	tpl := Sanitize(inst, contentType)
	if inst.ID != "" {
		tpl.Metadata = Merge(tpl.Metadata, map[string]any{MetadataKeySourceInstance: inst.ID})
	}

	id, err := e.save(ctx, tpl, contentType)
	if err != nil {
		return nil, fmt.Errorf("saving %s component %s: %w", contentType, inst.ID, err)
	}
	tpl.ID = id
	return tpl, nil
}

func (e *TemplateEngine) save(ctx context.Context, tpl *entities.Template, contentType entities.ContentType) (string, error) {
	id, err := e.store.SaveTemplate(ctx, tpl, contentType)
	if err != nil {
		var saveErr *entities.SaveError
		if errors.As(err, &saveErr) {
			return "", err
		}
		return "", &entities.SaveError{Type: contentType, Cause: err}
	}
	return id, nil
}

// GetCustomizationHistory returns the customizations applied to
// (templateID, contentType), oldest first.
func (e *TemplateEngine) GetCustomizationHistory(
	ctx context.Context,
	templateID string,
	contentType entities.ContentType,
) ([]entities.CustomizationHistoryEntry, error) {
	entries, err := e.history.History(ctx, templateID, contentType)
	if err != nil {
		return nil, fmt.Errorf("loading customization history for %s: %w",
			entities.HistoryKey(templateID, contentType), err)
	}
	if entries == nil {
		entries = []entities.CustomizationHistoryEntry{}
	}
	return entries, nil
}

// ValidateCustomizations checks customizations against a template.
func (e *TemplateEngine) ValidateCustomizations(
	template *entities.Template,
	customization entities.Customization,
	contentType entities.ContentType,
) entities.ValidationResult {
	return ValidateCustomizations(template, customization, contentType)
}

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
