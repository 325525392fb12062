package ports

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// ArtifactSource resolves artifacts referenced by name.
// This allows the storage layer (Loam, registry, memory) to be decoupled.
type ArtifactSource interface {
	// Resolve returns the artifact stored under name.
	// Returns domain.ErrArtifactNotFound if there is none.
	Resolve(ctx context.Context, name string) (any, error)
}

// HookResolver resolves lifecycle hooks referenced by name in route files.
type HookResolver interface {
	// ResolveHook returns the hook registered under name.
	// Returns domain.ErrHookNotFound if there is none.
	ResolveHook(name string) (domain.HookFunc, error)
}

// RouteLoader loads declarative route configuration from a backend.
type RouteLoader interface {
	LoadRoutes(ctx context.Context) ([]domain.RouteConfig, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload of route files.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying routes change.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
