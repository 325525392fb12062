package wayfinder

import (
	"context"

	"github.com/aretw0/wayfinder/internal/matcher"
	"github.com/aretw0/wayfinder/internal/runtime"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/google/uuid"
)

// Callback receives the outcome of a transition. See runtime.Callback.
type Callback = runtime.Callback

// Match resolves loc against tree once, without a history, and calls
// callback with the result. It runs the enter hooks of the matched branch and
// loads its artifacts, which is what a server needs before rendering.
func Match(ctx context.Context, tree *domain.RouteTree, loc *domain.Location, callback Callback, opts ...Option) {
	s := newSettings(opts)
	delegate := runtime.NewDefaultDelegate(runtime.NewArtifactLoader(s.runtimeOptions()...), runtime.WithBasename(s.basename))
	pipeline := runtime.NewHookPipeline(s.runtimeOptions()...)

	t := domain.NewTransition(uuid.NewString())
	state, err := pipeline.Resolve(ctx, nil, tree, loc, delegate, t)
	if callback == nil {
		return
	}
	if err != nil {
		callback(err, t, nil)
		return
	}
	callback(nil, t, state)
}

// Href resolves to against the matched branch patterns under basename and
// appends the encoded query.
func Href(to string, query domain.Query, branchPaths []string, basename string) string {
	path := matcher.ResolvePath(to, branchPaths, basename)
	if q := query.Encode(); q != "" {
		path += "?" + q
	}
	return path
}

// BranchPaths returns the route patterns of state's branch with its params
// filled in, ready to be passed to Href.
func BranchPaths(state *domain.RouterState) []string {
	return runtime.BranchPaths(state)
}
