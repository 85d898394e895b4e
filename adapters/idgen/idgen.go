// Package idgen provides identifier sources for the "$generate: uuid" default.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/artpar/modeldiff/core/registry"
	"github.com/google/uuid"
)

// UUID generates random version 4 UUIDs.
type UUID struct{}

// New returns a new UUID string.
func (UUID) New() string {
	return uuid.NewString()
}

var _ registry.IDSource = UUID{}

// Sequential produces prefix-1, prefix-2, ... for reproducible fixtures.
type Sequential struct {
	prefix  string
	counter atomic.Uint64
}

// NewSequential creates a sequential source. An empty prefix yields bare
// numbers.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// New returns the next identifier.
func (s *Sequential) New() string {
	n := s.counter.Add(1)
	if s.prefix == "" {
		return fmt.Sprint(n)
	}
	return fmt.Sprintf("%s-%d", s.prefix, n)
}

// Reset restarts the sequence.
func (s *Sequential) Reset() {
	s.counter.Store(0)
}

var _ registry.IDSource = (*Sequential)(nil)
