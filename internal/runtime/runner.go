package runtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Callback receives the outcome of a transition that was not superseded.
// On success state is the committed state. A cancelled transition, or one
// that matched nothing, reports a nil state and nil error; inspect t to tell
// them apart.
type Callback func(err error, t *domain.Transition, state *domain.RouterState)

// Runner keeps at most one transition in flight and owns the committed state.
type Runner struct {
	pipeline *HookPipeline
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	mu      sync.Mutex
	state   *domain.RouterState
	current *domain.Transition
	cancel  context.CancelFunc

	transitioning atomic.Bool
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	c := newConfig(opts)
	p := c.pipeline
	if p == nil {
		p = &HookPipeline{logger: c.logger, hooks: c.hooks, timeout: c.hookTimeout}
	}
	return &Runner{
		pipeline: p,
		hooks:    c.hooks,
		logger:   c.logger,
		state:    c.initialState,
	}
}

// State returns the committed state, nil before the first commit.
func (r *Runner) State() *domain.RouterState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// IsTransitioning reports whether a transition is in flight.
func (r *Runner) IsTransitioning() bool {
	return r.transitioning.Load()
}

// Run starts a transition to loc, cancelling the one in flight, and blocks
// until it settles. callback is not invoked if this transition is itself
// superseded.
func (r *Runner) Run(ctx context.Context, tree *domain.RouteTree, loc *domain.Location, delegate ports.TransitionDelegate, callback Callback) {
	t, tctx, prev := r.begin(ctx)
	r.execute(ctx, t, tctx, prev, tree, loc, delegate, callback)
}

// Start is Run without blocking. The transition is registered before Start
// returns, so calls made in order supersede each other in order. The
// returned channel is closed once the transition settled and callback
// returned.
func (r *Runner) Start(ctx context.Context, tree *domain.RouteTree, loc *domain.Location, delegate ports.TransitionDelegate, callback Callback) <-chan struct{} {
	t, tctx, prev := r.begin(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.execute(ctx, t, tctx, prev, tree, loc, delegate, callback)
	}()
	return done
}

func (r *Runner) execute(ctx context.Context, t *domain.Transition, tctx transitionContext, prev *domain.RouterState, tree *domain.RouteTree, loc *domain.Location, delegate ports.TransitionDelegate, callback Callback) {
	defer tctx.cancel()

	start := time.Now()
	emitStart(ctx, r.hooks, t, loc)

	state, err := r.pipeline.RunTransition(tctx.ctx, prev, tree, loc, delegate, t)

	r.mu.Lock()
	if r.current != t {
		r.mu.Unlock()
		r.logger.DebugContext(ctx, "transition superseded", "transition", t.ID, "path", loc.Path())
		emitEnd(ctx, r.logger, r.hooks, t, loc, domain.ResultSuperseded, nil, start)
		return
	}
	r.current = nil
	r.cancel = nil
	r.transitioning.Store(false)

	result := resultOf(err, t, state)
	if result == domain.ResultCommitted {
		r.state = state
	}
	r.mu.Unlock()

	emitEnd(ctx, r.logger, r.hooks, t, loc, result, err, start)

	if callback == nil {
		return
	}
	if err != nil {
		callback(err, t, nil)
		return
	}
	if t.Cancelled() {
		callback(nil, t, nil)
		return
	}
	callback(nil, t, state)
}

type transitionContext struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (r *Runner) begin(ctx context.Context) (*domain.Transition, transitionContext, *domain.RouterState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		r.current.Cancel(domain.ErrSuperseded)
		r.cancel()
	}

	t := domain.NewTransition(uuid.NewString())
	tctx, cancel := context.WithCancel(ctx)
	r.current = t
	r.cancel = cancel
	r.transitioning.Store(true)
	return t, transitionContext{ctx: tctx, cancel: cancel}, r.state
}

func resultOf(err error, t *domain.Transition, state *domain.RouterState) domain.TransitionResult {
	switch {
	case err != nil:
		return domain.ResultFailed
	case t.Cancelled() && t.Redirect() != nil:
		return domain.ResultRedirected
	case t.Cancelled():
		return domain.ResultAborted
	case state == nil:
		return domain.ResultNoMatch
	default:
		return domain.ResultCommitted
	}
}

func emitStart(ctx context.Context, hooks domain.LifecycleHooks, t *domain.Transition, loc *domain.Location) {
	if hooks.OnTransitionStart == nil {
		return
	}
	hooks.OnTransitionStart(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTransitionStart, TransitionID: t.ID},
		Pathname:  loc.Pathname,
	})
}

func emitEnd(ctx context.Context, logger *slog.Logger, hooks domain.LifecycleHooks, t *domain.Transition, loc *domain.Location, result domain.TransitionResult, err error, start time.Time) {
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.DebugContext(ctx, "transition failed", "transition", t.ID, "path", loc.Path(), "err", err)
	}
	if hooks.OnTransitionEnd == nil {
		return
	}
	hooks.OnTransitionEnd(ctx, &domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTransitionEnd, TransitionID: t.ID},
		Pathname:  loc.Pathname,
		Result:    result,
		Duration:  time.Since(start),
		Err:       err,
	})
}
