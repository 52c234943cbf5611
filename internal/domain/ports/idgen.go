package ports

// IDGenerator produces ids that are never reused within the process.
// Implementations must be safe for concurrent use.
type IDGenerator interface {
	NewID() string
}
