package module

import "slices"

// Registry is an insertion-ordered EntryType index that engines embed in their Module
// implementations.
type Registry struct {
	order   []string
	entries map[string]EntryType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]EntryType)}
}

// Register adds or replaces an entry type. Replacing keeps the original position.
func (r *Registry) Register(e EntryType) {
	if _, ok := r.entries[e.Name]; !ok {
		r.order = append(r.order, e.Name)
	}
	r.entries[e.Name] = e
}

// Lookup returns the entry type registered under name.
func (r *Registry) Lookup(name string) (EntryType, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Entries returns the registered names in registration order.
func (r *Registry) Entries() []string {
	return slices.Clone(r.order)
}

// Len returns the number of registered entry types.
func (r *Registry) Len() int {
	return len(r.order)
}
