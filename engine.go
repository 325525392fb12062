package wayfinder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/wayfinder/internal/compiler"
	"github.com/aretw0/wayfinder/internal/runtime"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/google/uuid"
)

// ErrNotWatchable is returned by Watch when the route loader cannot watch.
var ErrNotWatchable = errors.New("route loader does not support watching")

// Engine is the server-side entry point. It owns a route tree loaded from a
// RouteLoader, which can be reloaded at runtime, and resolves locations
// against it without a history.
type Engine struct {
	loader   ports.RouteLoader
	hooks    ports.HookResolver
	basename string
	pipeline *runtime.HookPipeline
	delegate *runtime.DefaultDelegate
	logger   *slog.Logger
	Name     string

	mu   sync.RWMutex
	tree *domain.RouteTree
}

// NewEngine loads the routes of loader and builds the first tree.
func NewEngine(ctx context.Context, loader ports.RouteLoader, opts ...Option) (*Engine, error) {
	if loader == nil {
		return nil, fmt.Errorf("a route loader is required")
	}
	s := newSettings(opts)
	e := &Engine{
		loader:   loader,
		hooks:    s.hooks,
		basename: s.basename,
		pipeline: runtime.NewHookPipeline(s.runtimeOptions()...),
		delegate: runtime.NewDefaultDelegate(
			runtime.NewArtifactLoader(s.runtimeOptions()...),
			runtime.WithBasename(s.basename),
		),
		logger: s.logger,
		Name:   s.name,
	}
	if err := e.Reload(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload rebuilds the tree from the loader. On failure the previous tree
// stays in place.
func (e *Engine) Reload(ctx context.Context) error {
	configs, err := e.loader.LoadRoutes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load routes: %w", err)
	}
	tree, err := compiler.Normalize(configs, e.hooks)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.tree = tree
	e.mu.Unlock()

	e.logger.DebugContext(ctx, "routes loaded", "count", tree.Len())
	return nil
}

// Routes returns the current route tree.
func (e *Engine) Routes() *domain.RouteTree {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree
}

// Basename returns the path every route is mounted under.
func (e *Engine) Basename() string {
	return e.basename
}

// Resolve runs one transition from prev to loc. A cancelled transition
// returns a nil state and nil error with the redirect or abort reason on
// the returned transition. A location that matches nothing returns
// domain.ErrNoMatch.
func (e *Engine) Resolve(ctx context.Context, prev *domain.RouterState, loc *domain.Location) (*domain.RouterState, *domain.Transition, error) {
	t := domain.NewTransition(uuid.NewString())
	state, err := e.pipeline.Resolve(ctx, prev, e.Routes(), loc, e.delegate, t)
	if err != nil {
		return nil, t, err
	}
	if state == nil && !t.Cancelled() {
		return nil, t, fmt.Errorf("%q: %w", loc.Pathname, domain.ErrNoMatch)
	}
	return state, t, nil
}

// Href resolves to relative to the location from, which must match. With an
// empty from, to resolves against the root.
func (e *Engine) Href(to string, query domain.Query, from string) (string, error) {
	var paths []string
	if from != "" {
		state := runtime.MatchBasename(e.Routes(), domain.ParseLocation(from), e.basename)
		if state == nil {
			return "", fmt.Errorf("%q: %w", from, domain.ErrNoMatch)
		}
		paths = BranchPaths(state)
	}
	return Href(to, query, paths, e.basename), nil
}

// Hydrate rebuilds a persisted snapshot against the current tree.
func (e *Engine) Hydrate(snap *domain.StateSnapshot) (*domain.RouterState, error) {
	return snap.Hydrate(e.Routes())
}

// Watch reloads the tree whenever the loader reports a change and signals
// on the returned channel after each successful reload.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	w, ok := e.loader.(ports.Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range changes {
			if err := e.Reload(ctx); err != nil {
				e.logger.ErrorContext(ctx, "reload failed, keeping previous routes", "err", err)
				continue
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}
