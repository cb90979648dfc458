package composer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-legaldocs/pkg/boilerplate"
	"github.com/goliatone/go-legaldocs/pkg/content"
	"github.com/goliatone/go-legaldocs/pkg/docerr"
	"github.com/goliatone/go-legaldocs/pkg/records"
)

// ErrUnknownKind is returned when no strategy is registered for a kind.
var ErrUnknownKind = errors.New("composer: unknown document kind")

// Strategy composes one document kind. Implementations are pure: the same
// bundle always yields an equal tree and no I/O happens.
type Strategy interface {
	Kind() records.DocumentKind
	Compose(bundle records.Bundle) (content.Tree, error)
}

// Registry stores strategies by kind.
type Registry struct {
	mu         sync.RWMutex
	strategies map[records.DocumentKind]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[records.DocumentKind]Strategy)}
}

// Default returns a registry holding every built-in strategy backed by the
// supplied clause catalog.
func Default(catalog *boilerplate.Catalog) (*Registry, error) {
	if catalog == nil {
		return nil, errors.New("composer: catalog is required")
	}
	reg := NewRegistry()
	for _, s := range []Strategy{
		NewStatutes(catalog),
		NewLease(catalog),
		NewRegistrationForm(catalog),
		NewManagerRoster(catalog),
		NewHonorDeclaration(catalog),
		NewSubscriptionDeclaration(catalog),
		NewShareRegister(catalog),
	} {
		if err := reg.Register(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds a strategy. Duplicate kinds return an error.
func (r *Registry) Register(s Strategy) error {
	if s == nil {
		return errors.New("composer: strategy is required")
	}
	kind := s.Kind()
	if kind == "" {
		return errors.New("composer: strategy kind is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[kind]; exists {
		return fmt.Errorf("composer: strategy %q already registered", kind)
	}
	r.strategies[kind] = s
	return nil
}

// Get returns the strategy for kind.
func (r *Registry) Get(kind records.DocumentKind) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s, nil
}

// Kinds lists the registered kinds, sorted.
func (r *Registry) Kinds() []records.DocumentKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.DocumentKind, 0, len(r.strategies))
	for k := range r.strategies {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Compose runs the strategy registered for kind and checks the resulting
// tree before handing it to renderers.
func (r *Registry) Compose(kind records.DocumentKind, bundle records.Bundle) (content.Tree, error) {
	s, err := r.Get(kind)
	if err != nil {
		return content.Tree{}, err
	}
	tree, err := s.Compose(bundle)
	if err != nil {
		return content.Tree{}, err
	}
	if err := tree.Validate(); err != nil {
		return content.Tree{}, &docerr.CompositionError{Kind: string(kind), Reason: err.Error()}
	}
	return tree, nil
}
