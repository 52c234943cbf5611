package ports

import "context"

// CollectionManager handles the lifecycle of a library's search collection.
// It is kept apart from TemplateIndex so the engine can run against index
// backends that are provisioned out of band.
type CollectionManager interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection removes the collection and everything indexed in it.
	DeleteCollection(ctx context.Context) error
}
