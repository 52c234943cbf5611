package services

import (
	"time"

	"github.com/ersonp/lore-forge/internal/domain/entities"
	"github.com/ersonp/lore-forge/internal/domain/mocks"
)

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestEngine(templates ...*entities.Template) (*TemplateEngine, *mocks.TemplateStore) {
	store := mocks.NewTemplateStore(templates...)
	engine := NewTemplateEngine(store, &mocks.IDGenerator{Prefix: "inst"}, WithClock(fixedClock))
	return engine, store
}

func nodeTemplate(id, name string, deps ...entities.DependencyRef) *entities.Template {
	return &entities.Template{
		ID:           id,
		Type:         entities.ContentNode,
		Name:         name,
		Fields:       map[string]any{},
		Dependencies: deps,
	}
}

func ref(id string, t entities.ContentType) entities.DependencyRef {
	return entities.DependencyRef{ID: id, Type: t}
}
