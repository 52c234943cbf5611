package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/ports"
)

// DefaultMaxDepth bounds dependency chains and composite nesting.
const DefaultMaxDepth = 32

// DependencyValidator checks that every transitive template dependency
// exists. It never follows a reference already on the current chain, so
// cyclic declarations fail instead of looping.
type DependencyValidator struct {
	store    ports.TemplateStore
	maxDepth int
}

// NewDependencyValidator creates a DependencyValidator. A maxDepth below 1
// selects DefaultMaxDepth.
func NewDependencyValidator(store ports.TemplateStore, maxDepth int) *DependencyValidator {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return &DependencyValidator{
		store:    store,
		maxDepth: maxDepth,
	}
}

// Validate succeeds when every dependency of template, transitively,
// exists in the store. It fails fast with *entities.MissingDependencyError,
// *entities.CyclicDependencyError or *entities.RecursionLimitError.
func (v *DependencyValidator) Validate(ctx context.Context, template *entities.Template) error {
	if len(template.Dependencies) == 0 {
		return nil
	}
	w := &dependencyWalk{
		validator: v,
		validated: make(map[entities.DependencyRef]bool),
	}
	return w.visit(ctx, template, []entities.DependencyRef{template.Ref()})
}

// dependencyWalk carries the state of one Validate call.
type dependencyWalk struct {
	validator *DependencyValidator
	// validated holds refs whose whole subtree already passed, so shared
	// (diamond) dependencies are fetched once.
	validated map[entities.DependencyRef]bool
}

func (w *dependencyWalk) visit(ctx context.Context, template *entities.Template, path []entities.DependencyRef) error {
	current := path[len(path)-1]

	for _, dep := range template.Dependencies {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("validating dependencies of %s: %w", current, err)
		}

		next := append(path[:len(path):len(path)], dep)
		if slices.Contains(path, dep) {
			return &entities.CyclicDependencyError{Path: next}
		}
		if w.validated[dep] {
			continue
		}
		if len(next) > w.validator.maxDepth {
			return &entities.RecursionLimitError{Limit: w.validator.maxDepth, Ref: dep}
		}

		found, err := w.validator.store.GetTemplate(ctx, dep.ID, dep.Type)
		if err != nil {
			return fmt.Errorf("fetching dependency %s of %s: %w", dep, current, err)
		}
		if found == nil {
			return &entities.MissingDependencyError{ID: dep.ID, Type: dep.Type}
		}

		if err := w.visit(ctx, found, next); err != nil {
			return err
		}
		w.validated[dep] = true
	}

	return nil
}
