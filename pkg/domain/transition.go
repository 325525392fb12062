package domain

import (
	"context"
	"sync"
)

// Transition coordinates one navigation attempt. Hooks use it to cancel or
// redirect; the runner cancels it when a newer navigation supersedes it.
type Transition struct {
	ID string

	mu          sync.Mutex
	cancelled   bool
	redirect    *Location
	abortReason any
}

// NewTransition creates a live transition.
func NewTransition(id string) *Transition {
	return &Transition{ID: id}
}

// Cancelled reports whether the transition was aborted or redirected.
func (t *Transition) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// Redirect returns the redirect target, if any.
func (t *Transition) Redirect() *Location {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.redirect
}

// AbortReason returns the reason given to Cancel.
func (t *Transition) AbortReason() any {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.abortReason
}

// Cancel aborts the transition. Only the first cancellation is recorded.
func (t *Transition) Cancel(reason any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return
	}
	t.cancelled = true
	t.abortReason = reason
}

// RedirectTo cancels the transition in favour of loc.
func (t *Transition) RedirectTo(loc *Location) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancelled {
		return
	}
	t.cancelled = true
	t.redirect = loc
}

// OutcomeKind tells the pipeline what a hook decided.
type OutcomeKind int

const (
	OutcomeProceed OutcomeKind = iota
	OutcomeRedirect
	OutcomeAbort
)

// Outcome is the explicit result of a hook.
type Outcome struct {
	Kind     OutcomeKind
	Location *Location
	Reason   any
}

// Proceed lets the transition continue.
func Proceed() Outcome { return Outcome{Kind: OutcomeProceed} }

// RedirectTo cancels the transition and navigates to loc instead.
func RedirectTo(loc *Location) Outcome { return Outcome{Kind: OutcomeRedirect, Location: loc} }

// Abort cancels the transition with reason.
func Abort(reason any) Outcome { return Outcome{Kind: OutcomeAbort, Reason: reason} }

// HookFunc is a lifecycle hook. A returned error fails the transition;
// the Outcome decides between proceeding, redirecting and aborting.
type HookFunc func(ctx context.Context, next *RouterState, t *Transition) (Outcome, error)

// AsyncHook adapts a continuation-style hook into a HookFunc that blocks
// until done is called or ctx ends. Calls to done after the first are ignored.
func AsyncHook(fn func(next *RouterState, t *Transition, done func(Outcome, error))) HookFunc {
	return func(ctx context.Context, next *RouterState, t *Transition) (Outcome, error) {
		type result struct {
			outcome Outcome
			err     error
		}
		ch := make(chan result, 1)
		var once sync.Once
		fn(next, t, func(o Outcome, err error) {
			once.Do(func() { ch <- result{o, err} })
		})

		select {
		case r := <-ch:
			return r.outcome, r.err
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		}
	}
}

// HookPhase names the slot a hook runs in.
type HookPhase string

const (
	PhaseTransition HookPhase = "transition"
	PhaseLeave      HookPhase = "leave"
	PhaseChange     HookPhase = "change"
	PhaseEnter      HookPhase = "enter"
)

// TransitionHook is a hook scheduled into a transition. Route is nil for
// global transition hooks.
type TransitionHook struct {
	Phase HookPhase
	Route *RouteNode
	Fn    HookFunc
}

// RouteID returns the ID of the owning route, or "" for global hooks.
func (h TransitionHook) RouteID() string {
	if h.Route == nil {
		return ""
	}
	return h.Route.ID
}
