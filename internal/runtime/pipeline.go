package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/wayfinder/internal/matcher"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// HookPipeline runs transition hooks strictly in sequence.
type HookPipeline struct {
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	timeout time.Duration
}

// NewHookPipeline creates a pipeline.
func NewHookPipeline(opts ...Option) *HookPipeline {
	c := newConfig(opts)
	return &HookPipeline{
		logger:  c.logger,
		hooks:   c.hooks,
		timeout: c.hookTimeout,
	}
}

// ComputeHooks lists the route hooks for moving from prev to next:
// leave hooks leaf first, then change hooks and enter hooks root first.
// Routes without a hook for their phase are skipped.
func ComputeHooks(prev, next *domain.RouterState) []domain.TransitionHook {
	diff := domain.Diff(prev, next)

	var hooks []domain.TransitionHook
	for _, n := range diff.Leaving {
		if n.OnLeave != nil {
			hooks = append(hooks, domain.TransitionHook{Phase: domain.PhaseLeave, Route: n, Fn: n.OnLeave})
		}
	}
	for _, n := range diff.Changing {
		if n.OnChange != nil {
			hooks = append(hooks, domain.TransitionHook{Phase: domain.PhaseChange, Route: n, Fn: n.OnChange})
		}
	}
	for _, n := range diff.Entering {
		if n.OnEnter != nil {
			hooks = append(hooks, domain.TransitionHook{Phase: domain.PhaseEnter, Route: n, Fn: n.OnEnter})
		}
	}
	return hooks
}

// Run executes the route hooks for moving from prev to next.
func (p *HookPipeline) Run(ctx context.Context, prev, next *domain.RouterState, t *domain.Transition) error {
	return p.Execute(ctx, next, ComputeHooks(prev, next), t)
}

// Execute runs hooks in order. A redirect or abort cancels t and skips the
// remaining hooks without an error; a failing hook returns a *domain.HookError.
func (p *HookPipeline) Execute(ctx context.Context, next *domain.RouterState, hooks []domain.TransitionHook, t *domain.Transition) error {
	for _, h := range hooks {
		if t.Cancelled() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if h.Fn == nil {
			continue
		}

		p.emit(ctx, h, t)
		outcome, err := p.invoke(ctx, h, next, t)
		if err != nil {
			p.logger.DebugContext(ctx, "hook failed", "route", h.RouteID(), "phase", h.Phase, "err", err)
			return &domain.HookError{RouteID: h.RouteID(), Phase: h.Phase, Err: err}
		}

		switch outcome.Kind {
		case domain.OutcomeRedirect:
			p.logger.DebugContext(ctx, "hook redirected", "route", h.RouteID(), "to", locationPath(outcome.Location))
			t.RedirectTo(resolveRedirect(outcome.Location, next))
			return nil
		case domain.OutcomeAbort:
			p.logger.DebugContext(ctx, "hook aborted", "route", h.RouteID(), "reason", outcome.Reason)
			t.Cancel(outcome.Reason)
			return nil
		}
	}
	return nil
}

func (p *HookPipeline) invoke(ctx context.Context, h domain.TransitionHook, next *domain.RouterState, t *domain.Transition) (domain.Outcome, error) {
	if p.timeout <= 0 {
		return safeCall(ctx, h.Fn, next, t)
	}

	hctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		outcome domain.Outcome
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		o, err := safeCall(hctx, h.Fn, next, t)
		ch <- result{o, err}
	}()

	select {
	case r := <-ch:
		return r.outcome, r.err
	case <-hctx.Done():
		return domain.Outcome{}, hctx.Err()
	}
}

func safeCall(ctx context.Context, fn domain.HookFunc, next *domain.RouterState, t *domain.Transition) (outcome domain.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return fn(ctx, next, t)
}

func (p *HookPipeline) emit(ctx context.Context, h domain.TransitionHook, t *domain.Transition) {
	if h.Route == nil {
		return
	}
	var fn func(context.Context, *domain.RouteEvent)
	var typ domain.EventType
	switch h.Phase {
	case domain.PhaseLeave:
		fn, typ = p.hooks.OnRouteLeave, domain.EventRouteLeave
	case domain.PhaseChange:
		fn, typ = p.hooks.OnRouteChange, domain.EventRouteChange
	case domain.PhaseEnter:
		fn, typ = p.hooks.OnRouteEnter, domain.EventRouteEnter
	}
	if fn == nil {
		return
	}
	fn(ctx, &domain.RouteEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, TransitionID: t.ID},
		RouteID:   h.Route.ID,
		Path:      h.Route.Path,
		Phase:     h.Phase,
	})
}

// resolveRedirect makes a relative redirect target absolute against the
// branch of the state the hook was shown. The result carries no basename.
func resolveRedirect(to *domain.Location, next *domain.RouterState) *domain.Location {
	if to == nil || strings.HasPrefix(to.Pathname, "/") {
		return to
	}
	abs := *to
	abs.Pathname = matcher.ResolvePath(to.Pathname, BranchPaths(next), "")
	return &abs
}

// RunTransition matches loc, runs the transition hooks and loads artifacts.
// It returns a nil state and nil error when nothing matched or when t was
// cancelled along the way; artifacts are never loaded for a cancelled t.
func (p *HookPipeline) RunTransition(ctx context.Context, prev *domain.RouterState, tree *domain.RouteTree, loc *domain.Location, delegate ports.TransitionDelegate, t *domain.Transition) (*domain.RouterState, error) {
	next, err := delegate.GetState(ctx, tree, loc)
	if err != nil {
		return nil, err
	}
	if next == nil || t.Cancelled() {
		return nil, nil
	}

	hooks := delegate.GetTransitionHooks(prev, next)
	if err := p.Execute(ctx, next, hooks, t); err != nil {
		return nil, err
	}
	if t.Cancelled() {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	artifacts, err := delegate.GetComponents(ctx, next)
	if err != nil {
		return nil, err
	}
	if t.Cancelled() {
		return nil, nil
	}
	next.Artifacts = artifacts
	return next, nil
}

// Resolve is RunTransition bracketed by the transition start and end
// lifecycle events, for callers that run transitions without a Runner.
func (p *HookPipeline) Resolve(ctx context.Context, prev *domain.RouterState, tree *domain.RouteTree, loc *domain.Location, delegate ports.TransitionDelegate, t *domain.Transition) (*domain.RouterState, error) {
	start := time.Now()
	emitStart(ctx, p.hooks, t, loc)
	state, err := p.RunTransition(ctx, prev, tree, loc, delegate, t)
	emitEnd(ctx, p.logger, p.hooks, t, loc, resultOf(err, t, state), err, start)
	return state, err
}

func locationPath(loc *domain.Location) string {
	if loc == nil {
		return ""
	}
	return loc.Path()
}
