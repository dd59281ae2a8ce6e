package exportsql

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-tableexport/export"
	"github.com/goliatone/go-tableexport/sources/table"
)

// Definition registers a named query.
type Definition struct {
	Name  string
	Query string
	// Params lists request parameters bound to the query placeholders in order.
	Params []string
	// Columns overrides header, type or alignment of result columns by id.
	Columns  []table.Column
	Validate func(params export.Params) error
}

// Registry stores named query definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a named query definition.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return export.NewError(export.KindValidation, "query name is required", nil)
	}
	if def.Query == "" {
		return export.NewError(export.KindValidation, "query string is required", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return export.NewError(export.KindValidation, fmt.Sprintf("query %q already registered", def.Name), nil)
	}
	r.defs[def.Name] = def
	return nil
}

// Resolve returns a query definition by name.
func (r *Registry) Resolve(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Names lists registered queries in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
