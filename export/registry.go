package export

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Params carries request parameters to a source factory.
type Params map[string]string

// SourceFunc builds a holder for one export request.
type SourceFunc func(ctx context.Context, params Params) (Holder, error)

// SourceRegistry stores named holder factories.
type SourceRegistry struct {
	mu      sync.RWMutex
	sources map[string]SourceFunc
}

// NewSourceRegistry creates an empty registry.
func NewSourceRegistry() *SourceRegistry {
	return &SourceRegistry{sources: make(map[string]SourceFunc)}
}

// Register adds a named source.
func (r *SourceRegistry) Register(name string, fn SourceFunc) error {
	if name == "" {
		return NewError(KindValidation, "source name is required", nil)
	}
	if fn == nil {
		return NewError(KindValidation, "source factory is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[name]; exists {
		return NewError(KindValidation, fmt.Sprintf("source %q already registered", name), nil)
	}
	r.sources[name] = fn
	return nil
}

// RegisterHolder registers a fixed holder under name.
func (r *SourceRegistry) RegisterHolder(name string, holder Holder) error {
	if holder == nil {
		return NewError(KindValidation, "holder is required", nil)
	}
	return r.Register(name, func(context.Context, Params) (Holder, error) {
		return holder, nil
	})
}

// Resolve returns the factory registered under name.
func (r *SourceRegistry) Resolve(name string) (SourceFunc, error) {
	r.mu.RLock()
	fn, ok := r.sources[name]
	r.mu.RUnlock()
	if !ok {
		return nil, NewError(KindNotFound, fmt.Sprintf("source %q not found", name), nil)
	}
	return fn, nil
}

// Names lists registered sources in sorted order.
func (r *SourceRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
