// Package idgen provides id generators for content instances.
package idgen

import "github.com/google/uuid"

// UUID generates random (version 4) UUIDs.
type UUID struct{}

// NewID returns a new UUID string.
func (UUID) NewID() string {
	return uuid.NewString()
}
