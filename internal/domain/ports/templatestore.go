// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// TemplateStore persists templates, keyed by (id, content type).
type TemplateStore interface {
	// GetTemplate returns the template, or nil if it does not exist.
	GetTemplate(ctx context.Context, id string, contentType entities.ContentType) (*entities.Template, error)

	// SaveTemplate stores a template and returns its id. A template without
	// an id is assigned a new one.
	SaveTemplate(ctx context.Context, template *entities.Template, contentType entities.ContentType) (string, error)

	// ListTemplatesByType lists all templates of one content type.
	ListTemplatesByType(ctx context.Context, contentType entities.ContentType) ([]entities.Template, error)

	// DeleteTemplate removes a template. Deleting a missing template is not an error.
	DeleteTemplate(ctx context.Context, id string, contentType entities.ContentType) error
}

// DependentsFinder finds templates that declare a dependency on a template.
// Stores that track dependencies implement it alongside TemplateStore.
type DependentsFinder interface {
	// FindDependents returns templates depending on (id, contentType),
	// following dependents up to depth levels.
	FindDependents(ctx context.Context, id string, contentType entities.ContentType, depth int) ([]entities.DependencyRef, error)
}

// AuditLog reads the change log kept by a template store.
type AuditLog interface {
	// FindAuditLog returns entries for one template, newest first.
	FindAuditLog(ctx context.Context, templateID string, contentType entities.ContentType) ([]entities.AuditEntry, error)

	// FindAuditLogByAction returns the most recent entries for an action.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
