// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ersonp/lore-forge/internal/domain/entities"
)

// TemplateStore is an in-memory mock implementation of ports.TemplateStore.
type TemplateStore struct {
	mu        sync.Mutex
	Templates map[entities.DependencyRef]*entities.Template

	// Errors returned by the matching method when set.
	GetErr        error
	SaveErr       error
	ListErr       error
	DeleteErr     error
	DependentsErr error
	// SaveErrOnCall limits SaveErr to the Nth SaveTemplate call when > 0.
	SaveErrOnCall int

	// Dependents maps a template to the templates declaring it directly.
	Dependents map[entities.DependencyRef][]entities.DependencyRef
	// Audit is returned by the audit log methods.
	Audit []entities.AuditEntry

	// Call tracking
	GetCallCount  int
	SaveCallCount int
	LastSaved     *entities.Template
	Deleted       []entities.DependencyRef
	nextID        int
}

// NewTemplateStore creates a mock store seeded with templates.
func NewTemplateStore(templates ...*entities.Template) *TemplateStore {
	s := &TemplateStore{Templates: make(map[entities.DependencyRef]*entities.Template)}
	for _, t := range templates {
		s.Templates[t.Ref()] = t
	}
	return s
}

// Put adds or replaces a template.
func (s *TemplateStore) Put(t *entities.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Templates[t.Ref()] = t
}

// GetTemplate returns the stored template, or nil when absent.
func (s *TemplateStore) GetTemplate(_ context.Context, id string, contentType entities.ContentType) (*entities.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetCallCount++
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	t, ok := s.Templates[entities.DependencyRef{ID: id, Type: contentType}]
	if !ok {
		return nil, nil
	}
	return t, nil
}

// SaveTemplate stores the template and returns its id.
func (s *TemplateStore) SaveTemplate(_ context.Context, t *entities.Template, contentType entities.ContentType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SaveCallCount++
	if s.SaveErr != nil && (s.SaveErrOnCall == 0 || s.SaveErrOnCall == s.SaveCallCount) {
		return "", s.SaveErr
	}
	saved := t.Clone()
	saved.Type = contentType
	if saved.ID == "" {
		s.nextID++
		saved.ID = fmt.Sprintf("tpl-%d", s.nextID)
	}
	s.Templates[saved.Ref()] = saved
	s.LastSaved = saved
	return saved.ID, nil
}

// ListTemplatesByType lists templates of one type sorted by id.
func (s *TemplateStore) ListTemplatesByType(_ context.Context, contentType entities.ContentType) ([]entities.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	result := make([]entities.Template, 0, len(s.Templates))
	for ref, t := range s.Templates {
		if ref.Type == contentType {
			result = append(result, *t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// DeleteTemplate removes a template.
func (s *TemplateStore) DeleteTemplate(_ context.Context, id string, contentType entities.ContentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	ref := entities.DependencyRef{ID: id, Type: contentType}
	delete(s.Templates, ref)
	s.Deleted = append(s.Deleted, ref)
	return nil
}

// FindDependents returns the configured direct dependents of a template,
// followed transitively up to depth levels.
func (s *TemplateStore) FindDependents(_ context.Context, id string, contentType entities.ContentType, depth int) ([]entities.DependencyRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DependentsErr != nil {
		return nil, s.DependentsErr
	}

	target := entities.DependencyRef{ID: id, Type: contentType}
	seen := map[entities.DependencyRef]bool{target: true}
	frontier := []entities.DependencyRef{target}
	result := []entities.DependencyRef{}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []entities.DependencyRef
		for _, ref := range frontier {
			for _, dependent := range s.Dependents[ref] {
				if seen[dependent] {
					continue
				}
				seen[dependent] = true
				result = append(result, dependent)
				next = append(next, dependent)
			}
		}
		frontier = next
	}
	return result, nil
}

// FindAuditLog returns the configured audit entries for one template.
func (s *TemplateStore) FindAuditLog(_ context.Context, templateID string, contentType entities.ContentType) ([]entities.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []entities.AuditEntry{}
	for _, entry := range s.Audit {
		if entry.TemplateID == templateID && entry.Type == contentType {
			result = append(result, entry)
		}
	}
	return result, nil
}

// FindAuditLogByAction returns up to limit configured entries for an action.
func (s *TemplateStore) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []entities.AuditEntry{}
	for _, entry := range s.Audit {
		if entry.Action == action {
			result = append(result, entry)
			if limit > 0 && len(result) == limit {
				break
			}
		}
	}
	return result, nil
}
