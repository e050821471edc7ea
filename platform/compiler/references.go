package compiler

import (
	"slices"
	"strings"
	"sync"
)

// ReferenceSet is the ordered list of module paths handed to the toolchain. It is safe
// for concurrent use so one compiler can serve several resources.
type ReferenceSet struct {
	mu    sync.RWMutex
	paths []string
}

// NewReferenceSet creates a set pre-populated with paths, skipping blank entries.
func NewReferenceSet(paths ...string) *ReferenceSet {
	rs := &ReferenceSet{}
	for _, p := range paths {
		rs.Add(p)
	}
	return rs
}

// Add appends path unless it is blank. It reports whether the path was added.
func (rs *ReferenceSet) Add(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.paths = append(rs.paths, path)
	return true
}

// Paths returns a copy of the references in insertion order.
func (rs *ReferenceSet) Paths() []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return slices.Clone(rs.paths)
}

// Len returns the number of references.
func (rs *ReferenceSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.paths)
}
