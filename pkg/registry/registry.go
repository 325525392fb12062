package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// ArtifactFunc produces an artifact on demand.
type ArtifactFunc func(ctx context.Context) (any, error)

// Registry maps names used in route files to hooks and artifacts.
// It implements both ports.HookResolver and ports.ArtifactSource.
type Registry struct {
	mu        sync.RWMutex
	hooks     map[string]domain.HookFunc
	artifacts map[string]ArtifactFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks:     make(map[string]domain.HookFunc),
		artifacts: make(map[string]ArtifactFunc),
	}
}

// RegisterHook adds a hook under name.
// If a hook with the same name exists, it is overwritten.
func (r *Registry) RegisterHook(name string, fn domain.HookFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = fn
}

// RegisterArtifact adds a static artifact under name.
func (r *Registry) RegisterArtifact(name string, value any) {
	r.RegisterArtifactFunc(name, func(context.Context) (any, error) { return value, nil })
}

// RegisterArtifactFunc adds an artifact produced on every resolution.
func (r *Registry) RegisterArtifactFunc(name string, fn ArtifactFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts[name] = fn
}

// ResolveHook looks up a hook by name, falling back to the builtins.
func (r *Registry) ResolveHook(name string) (domain.HookFunc, error) {
	r.mu.RLock()
	fn, ok := r.hooks[name]
	r.mu.RUnlock()

	if ok {
		return fn, nil
	}
	if fn, ok := Builtin(name); ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrHookNotFound, name)
}

// Resolve looks up an artifact by name and produces it.
func (r *Registry) Resolve(ctx context.Context, name string) (any, error) {
	r.mu.RLock()
	fn, ok := r.artifacts[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	}
	return fn(ctx)
}

// Hooks lists the registered hook names, sorted.
func (r *Registry) Hooks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.hooks)
}

// Artifacts lists the registered artifact names, sorted.
func (r *Registry) Artifacts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.artifacts)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
