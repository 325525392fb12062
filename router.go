package wayfinder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/wayfinder/internal/compiler"
	"github.com/aretw0/wayfinder/internal/runtime"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"go.uber.org/atomic"
)

// ErrNoHistory is returned by New when no history is given.
var ErrNoHistory = errors.New("wayfinder: a router needs a history")

// ErrAlreadyListening is returned by Listen when called twice.
var ErrAlreadyListening = errors.New("wayfinder: router is already listening")

// Router follows a History: every location change runs a transition and the
// committed state is reported through OnUpdate. Router is also the
// TransitionDelegate of its own transitions.
type Router struct {
	history  ports.History
	runner   *runtime.Runner
	loader   *runtime.ArtifactLoader
	hooks    ports.HookResolver
	basename string
	logger   *slog.Logger
	onUpdate func(*domain.RouterState)
	onError  func(error)

	mu              sync.RWMutex
	tree            *domain.RouteTree
	transitionHooks []*transitionHook
	preset          *domain.RouterState
	ctx             context.Context
	cancel          context.CancelFunc
	unlisten        func()

	pending          sync.WaitGroup
	listening        atomic.Bool
	ignoreNextChange atomic.Bool
}

type transitionHook struct {
	fn domain.HookFunc
}

// New creates a Router over history. routes accepts anything
// compiler.Normalize does: a *domain.RouteTree, route nodes, or route
// configs in struct, slice or map form.
func New(history ports.History, routes any, opts ...Option) (*Router, error) {
	if history == nil {
		return nil, ErrNoHistory
	}
	s := newSettings(opts)

	tree, err := compiler.Normalize(routes, s.hooks)
	if err != nil {
		return nil, err
	}
	if tree.Len() == 0 {
		return nil, &domain.ConfigError{Reason: "a router needs some routes"}
	}

	return &Router{
		history:  history,
		runner:   runtime.NewRunner(s.runtimeOptions()...),
		loader:   runtime.NewArtifactLoader(s.runtimeOptions()...),
		hooks:    s.hooks,
		basename: s.basename,
		logger:   s.logger,
		onUpdate: s.onUpdate,
		onError:  s.onError,
		tree:     tree,
		preset:   s.initialState,
	}, nil
}

// Listen subscribes to the history and runs the first transition for its
// current location. Transitions run on ctx until Close.
func (r *Router) Listen(ctx context.Context) error {
	if !r.listening.CompareAndSwap(false, true) {
		return ErrAlreadyListening
	}
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.ctx = ctx
	r.cancel = cancel
	r.mu.Unlock()

	// Subscribe first: the initial transition may redirect right away.
	unlisten := r.history.Listen(r.handleHistoryChange)

	r.mu.Lock()
	r.unlisten = unlisten
	r.mu.Unlock()

	r.update(r.history.Location())
	return nil
}

// Close unsubscribes from the history, cancels the transition in flight
// and waits for pending callbacks.
func (r *Router) Close() {
	r.mu.Lock()
	unlisten, cancel := r.unlisten, r.cancel
	r.unlisten, r.cancel = nil, nil
	r.mu.Unlock()

	if unlisten != nil {
		unlisten()
	}
	if cancel != nil {
		cancel()
	}
	r.pending.Wait()
	r.listening.Store(false)
}

// Wait blocks until no transition is in flight.
func (r *Router) Wait() {
	r.pending.Wait()
}

func (r *Router) handleHistoryChange(loc *domain.Location) {
	if r.ignoreNextChange.CompareAndSwap(true, false) {
		return
	}
	r.update(loc)
}

func (r *Router) update(loc *domain.Location) {
	if loc == nil {
		return
	}
	r.mu.RLock()
	ctx, tree := r.ctx, r.tree
	r.mu.RUnlock()
	if ctx == nil {
		return
	}

	r.pending.Add(1)
	done := r.runner.Start(ctx, tree, loc, r, func(err error, t *domain.Transition, state *domain.RouterState) {
		r.settle(ctx, loc, err, t, state)
	})
	go func() {
		<-done
		r.pending.Done()
	}()
}

func (r *Router) settle(ctx context.Context, loc *domain.Location, err error, t *domain.Transition, state *domain.RouterState) {
	switch {
	case err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled):
		r.logger.DebugContext(ctx, "transition dropped on close", "path", loc.Pathname)
	case err != nil:
		r.onError(err)
	case t.Cancelled():
		if to := t.Redirect(); to != nil {
			r.history.Replace(r.MakePath(to.Pathname, to.Query), to.State)
			return
		}
		committed := r.runner.State()
		if committed == nil {
			r.onError(fmt.Errorf("%w: %v", domain.ErrInitialAbort, t.AbortReason()))
			return
		}
		r.revert(loc, committed)
	case state == nil:
		r.logger.WarnContext(ctx, "location did not match any routes", "path", loc.Pathname)
	default:
		if r.onUpdate != nil {
			r.onUpdate(state)
		}
	}
}

// revert puts the history back on the committed entry without running a
// transition. A pushed entry is popped; anything else is overwritten.
func (r *Router) revert(aborted *domain.Location, committed *domain.RouterState) {
	if aborted.Action == domain.ActionPush {
		r.ignoreNextChange.Store(true)
		if r.history.Go(-1) {
			return
		}
	}
	r.ignoreNextChange.Store(true)
	r.history.Replace(committed.Location.Path(), committed.Location.State)
}

// State returns the committed state, nil before the first commit.
func (r *Router) State() *domain.RouterState {
	return r.runner.State()
}

// IsTransitioning reports whether a transition is in flight.
func (r *Router) IsTransitioning() bool {
	return r.runner.IsTransitioning()
}

// Routes returns the current route tree.
func (r *Router) Routes() *domain.RouteTree {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tree
}

// SetRoutes rebuilds the route tree from routes and, when listening, runs a
// transition for the current location against it.
func (r *Router) SetRoutes(routes any) error {
	tree, err := compiler.Normalize(routes, r.hooks)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.tree = tree
	r.mu.Unlock()

	if r.listening.Load() {
		r.update(r.history.Location())
	}
	return nil
}

// MakePath resolves to against the current branch and appends query.
func (r *Router) MakePath(to string, query domain.Query) string {
	return Href(to, query, BranchPaths(r.State()), r.basename)
}

// MakeHref is MakePath followed by the history's own href encoding, if it
// has one.
func (r *Router) MakeHref(to string, query domain.Query) string {
	path := r.MakePath(to, query)
	if h, ok := r.history.(ports.HrefMaker); ok {
		return h.MakeHref(path)
	}
	return path
}

// TransitionTo pushes a new entry for to. While a transition is in flight
// the entry being resolved is replaced instead.
func (r *Router) TransitionTo(to string, query domain.Query, state any) {
	path := r.MakePath(to, query)
	if r.IsTransitioning() {
		r.history.Replace(path, state)
		return
	}
	r.history.Push(path, state)
}

// ReplaceWith replaces the current entry with to.
func (r *Router) ReplaceWith(to string, query domain.Query, state any) {
	r.history.Replace(r.MakePath(to, query), state)
}

// Go moves n entries through the history.
func (r *Router) Go(n int) {
	r.history.Go(n)
}

// GoBack moves one entry back.
func (r *Router) GoBack() {
	r.Go(-1)
}

// GoForward moves one entry forward.
func (r *Router) GoForward() {
	r.Go(1)
}

// IsActive reports whether the committed location lies under pathname and
// carries every value of query.
func (r *Router) IsActive(pathname string, query domain.Query) bool {
	state := r.State()
	if state == nil || state.Location == nil {
		return false
	}
	return pathnameIsActive(pathname, state.Location.Pathname) && state.Location.Query.Contains(query)
}

func pathnameIsActive(pathname, active string) bool {
	want := domain.SplitPath(pathname)
	have := domain.SplitPath(active)
	if len(want) > len(have) {
		return false
	}
	for i := range want {
		if want[i] != have[i] {
			return false
		}
	}
	return true
}

// AddTransitionHook registers a hook that runs before the route hooks of
// every transition. The returned func removes it.
func (r *Router) AddTransitionHook(fn domain.HookFunc) (remove func()) {
	h := &transitionHook{fn: fn}
	r.mu.Lock()
	r.transitionHooks = append(r.transitionHooks, h)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, existing := range r.transitionHooks {
			if existing == h {
				r.transitionHooks = append(r.transitionHooks[:i:i], r.transitionHooks[i+1:]...)
				return
			}
		}
	}
}

// GetState reuses the initial state for its own location once; otherwise it
// matches loc against tree.
func (r *Router) GetState(_ context.Context, tree *domain.RouteTree, loc *domain.Location) (*domain.RouterState, error) {
	r.mu.Lock()
	preset := r.preset
	r.preset = nil
	r.mu.Unlock()

	if preset != nil && (preset.Location == nil || samePath(preset.Location, loc)) {
		return &domain.RouterState{
			Location:  loc,
			Branch:    preset.Branch,
			Params:    preset.Params.Clone(),
			Artifacts: preset.Artifacts,
		}, nil
	}
	return runtime.MatchBasename(tree, loc, r.basename), nil
}

func samePath(a, b *domain.Location) bool {
	return strings.TrimSuffix(a.Pathname, "/") == strings.TrimSuffix(b.Pathname, "/") && a.Search == b.Search
}

// GetTransitionHooks puts the global transition hooks, in registration
// order, before the route hooks.
func (r *Router) GetTransitionHooks(prev, next *domain.RouterState) []domain.TransitionHook {
	r.mu.RLock()
	hooks := make([]domain.TransitionHook, 0, len(r.transitionHooks))
	for _, h := range r.transitionHooks {
		hooks = append(hooks, domain.TransitionHook{Phase: domain.PhaseTransition, Fn: h.fn})
	}
	r.mu.RUnlock()

	return append(hooks, runtime.ComputeHooks(prev, next)...)
}

// GetComponents returns preset artifacts as they are and loads the rest.
func (r *Router) GetComponents(ctx context.Context, next *domain.RouterState) ([]*domain.ArtifactSet, error) {
	if next.Artifacts != nil {
		return next.Artifacts, nil
	}
	return r.loader.Load(ctx, next)
}
