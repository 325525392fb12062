package runtime

import (
	"context"

	"github.com/aretw0/wayfinder/internal/matcher"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// DefaultDelegate is the server-side TransitionDelegate: it matches and loads
// from scratch and contributes no global hooks.
type DefaultDelegate struct {
	loader   *ArtifactLoader
	basename string
}

// NewDefaultDelegate creates a delegate loading artifacts with loader.
// A nil loader resolves only inline and deferred artifacts.
func NewDefaultDelegate(loader *ArtifactLoader, opts ...Option) *DefaultDelegate {
	if loader == nil {
		loader = NewArtifactLoader()
	}
	c := newConfig(opts)
	return &DefaultDelegate{loader: loader, basename: c.basename}
}

// GetState matches loc.Pathname against tree.
func (d *DefaultDelegate) GetState(_ context.Context, tree *domain.RouteTree, loc *domain.Location) (*domain.RouterState, error) {
	return MatchBasename(tree, loc, d.basename), nil
}

// GetTransitionHooks returns the route hooks for prev to next.
func (d *DefaultDelegate) GetTransitionHooks(prev, next *domain.RouterState) []domain.TransitionHook {
	return ComputeHooks(prev, next)
}

// GetComponents loads the artifacts of next.
func (d *DefaultDelegate) GetComponents(ctx context.Context, next *domain.RouterState) ([]*domain.ArtifactSet, error) {
	return d.loader.Load(ctx, next)
}

// MatchBasename builds the skeleton state for loc in a tree mounted under
// basename, or nil when nothing matched.
func MatchBasename(tree *domain.RouteTree, loc *domain.Location, basename string) *domain.RouterState {
	pathname, ok := matcher.StripBasename(loc.Pathname, basename)
	if !ok {
		return nil
	}
	m, ok := matcher.Match(tree, pathname)
	if !ok {
		return nil
	}
	return &domain.RouterState{
		Location: loc,
		Branch:   m.Branch,
		Params:   m.Params,
	}
}

// BranchPaths returns the route patterns of state's branch with its params
// filled in.
func BranchPaths(state *domain.RouterState) []string {
	if state == nil {
		return nil
	}
	paths := make([]string, 0, len(state.Branch))
	for _, n := range state.Branch {
		paths = append(paths, matcher.Interpolate(n.Path, state.Params))
	}
	return paths
}
