package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-legaldocs/pkg/records"
)

// Registry stores renderers by name, providing discovery and duplication
// safeguards. Implementations can embed or wrap this for dependency injection.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	byFormat  map[records.Format][]string
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
		byFormat:  make(map[records.Format][]string),
	}
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}
	if renderer.Format() == "" {
		return fmt.Errorf("render: renderer %q declares no format", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}

	r.renderers[name] = renderer
	r.byFormat[renderer.Format()] = append(r.byFormat[renderer.Format()], name)
	return nil
}

// Get retrieves a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// List returns a sorted list of renderer names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a renderer is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.renderers[name]
	return ok
}

// Formats returns the formats at least one renderer can produce, sorted.
func (r *Registry) Formats() []records.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.Format, 0, len(r.byFormat))
	for f := range r.byFormat {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ForFormat picks the renderer producing format. When several renderers share
// a format the one whose name matches the engine preference wins, otherwise
// the first registered is used.
func (r *Registry) ForFormat(format records.Format, engine records.PDFEngine) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.byFormat[format]
	if len(names) == 0 {
		return nil, fmt.Errorf("render: no renderer for format %q", format)
	}
	if engine != "" {
		for _, name := range names {
			if strings.HasPrefix(name, string(engine)) {
				return r.renderers[name], nil
			}
		}
	}
	return r.renderers[names[0]], nil
}
