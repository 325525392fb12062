package ports

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// TransitionDelegate supplies the three capabilities a transition runner needs.
// The server variant matches and loads from scratch; client variants may add
// global hooks or return preset (hydrated) results.
type TransitionDelegate interface {
	// GetState matches loc against tree. A nil state with a nil error means no match.
	GetState(ctx context.Context, tree *domain.RouteTree, loc *domain.Location) (*domain.RouterState, error)

	// GetTransitionHooks returns the hooks to run, in order, when moving from prev to next.
	GetTransitionHooks(prev, next *domain.RouterState) []domain.TransitionHook

	// GetComponents loads the artifacts of next, aligned with its branch.
	GetComponents(ctx context.Context, next *domain.RouterState) ([]*domain.ArtifactSet, error)
}
