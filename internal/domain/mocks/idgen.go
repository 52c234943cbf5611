package mocks

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator hands out sequential ids with a fixed prefix.
type IDGenerator struct {
	Prefix string
	n      atomic.Int64
}

// NewID returns the next id.
func (g *IDGenerator) NewID() string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n.Add(1))
}
