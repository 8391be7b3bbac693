package aggregate

import (
	"github.com/fastertools/modelschemas/internal/schema"
)

// Origin tells whether a registry entry is a model's own schema or one of
// its definitions.
type Origin string

const (
	OriginModel      Origin = "model"
	OriginDefinition Origin = "definition"
)

// Entry is one schema published in a Registry.
type Entry struct {
	Name   string
	Schema *schema.Node
	Model  string
	Origin Origin
}

// Registry is an insertion-ordered set of named schemas. Writing an existing
// name replaces its entry in place.
type Registry struct {
	order   []string
	entries map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Put stores e, replacing any entry with the same name.
func (r *Registry) Put(e Entry) {
	if existing, ok := r.entries[e.Name]; ok {
		*existing = e
		return
	}
	r.order = append(r.order, e.Name)
	r.entries[e.Name] = &e
}

// Get returns the entry stored under name.
func (r *Registry) Get(name string) (Entry, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Schema returns the schema stored under name, or nil.
func (r *Registry) Schema(name string) *schema.Node {
	if e, ok := r.entries[name]; ok {
		return e.Schema
	}
	return nil
}

// Names returns the entry names in insertion order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Entries returns the entries in insertion order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.entries[name])
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.order)
}

// Node renders the registry as an object keyed by entry name, ready to be
// placed under components.schemas.
func (r *Registry) Node() *schema.Node {
	obj := schema.Object()
	for _, name := range r.order {
		obj.Set(name, r.entries[name].Schema)
	}
	return obj
}
