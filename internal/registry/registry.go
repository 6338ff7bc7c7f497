// Package registry holds the capability providers contributed per resource
// kind, such as extra detail tabs. Providers are registered once at startup;
// after Seal the registry is read-only.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ErrSealed is returned by Register after Seal.
var ErrSealed = errors.New("registry: sealed, providers must be registered before first use")

// RenderFunc renders a provider's view of one object.
type RenderFunc func(ctx context.Context, obj *unstructured.Unstructured) (string, error)

// Provider contributes a capability for one resource kind.
type Provider struct {
	// Kind is the resource kind the provider applies to, e.g. "DaemonSet".
	Kind string
	// Key identifies the provider within its kind; for tabs it is the tab name.
	Key    string
	Title  string
	Render RenderFunc
}

// Registry stores providers keyed by kind.
type Registry struct {
	mu        sync.RWMutex
	sealed    bool
	providers map[string][]Provider
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{providers: make(map[string][]Provider)}
}

// Register adds p. Duplicate kind/key pairs and registration after Seal
// return an error.
func (r *Registry) Register(p Provider) error {
	if p.Kind == "" || p.Key == "" {
		return fmt.Errorf("registry: provider kind and key are required")
	}
	if p.Render == nil {
		return fmt.Errorf("registry: provider %s/%s has no render function", p.Kind, p.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrSealed
	}
	for _, existing := range r.providers[p.Kind] {
		if existing.Key == p.Key {
			return fmt.Errorf("registry: provider %s/%s already registered", p.Kind, p.Key)
		}
	}
	r.providers[p.Kind] = append(r.providers[p.Kind], p)
	return nil
}

// Seal freezes the registry.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// ProvidersFor returns a copy of the providers of kind in registration order.
func (r *Registry) ProvidersFor(kind string) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Provider(nil), r.providers[kind]...)
}

var (
	defaultRegistry = New()
	initOnce        sync.Once
	initErr         error
)

// Init runs register against the process registry exactly once and seals
// it. Later calls return the result of the first one.
func Init(register func(*Registry) error) error {
	initOnce.Do(func() {
		if register != nil {
			initErr = register(defaultRegistry)
		}
		defaultRegistry.Seal()
	})
	return initErr
}

// Default returns the process registry. It is empty until Init ran.
func Default() *Registry {
	return defaultRegistry
}
