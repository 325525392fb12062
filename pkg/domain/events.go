package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransitionStart EventType = "transition_start"
	EventTransitionEnd   EventType = "transition_end"
	EventRouteLeave      EventType = "route_leave"
	EventRouteChange     EventType = "route_change"
	EventRouteEnter      EventType = "route_enter"
)

// TransitionResult summarizes how a transition ended.
type TransitionResult string

const (
	ResultCommitted  TransitionResult = "committed"
	ResultRedirected TransitionResult = "redirected"
	ResultAborted    TransitionResult = "aborted"
	ResultNoMatch    TransitionResult = "no_match"
	ResultFailed     TransitionResult = "failed"
	ResultSuperseded TransitionResult = "superseded"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp    time.Time `json:"timestamp"`
	Type         EventType `json:"type"`
	TransitionID string    `json:"transition_id"`
}

// TransitionEvent marks the start or end of a transition.
type TransitionEvent struct {
	EventBase
	Pathname string           `json:"pathname"`
	Result   TransitionResult `json:"result,omitempty"`
	Duration time.Duration    `json:"duration,omitempty"`
	Err      error            `json:"-"`
}

// RouteEvent marks a route hook about to run.
type RouteEvent struct {
	EventBase
	RouteID string    `json:"route_id"`
	Path    string    `json:"path"`
	Phase   HookPhase `json:"phase"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTransitionStart func(context.Context, *TransitionEvent)
	OnTransitionEnd   func(context.Context, *TransitionEvent)
	OnRouteLeave      func(context.Context, *RouteEvent)
	OnRouteChange     func(context.Context, *RouteEvent)
	OnRouteEnter      func(context.Context, *RouteEvent)
}

// CombineHooks fans every callback out to each set, in order.
func CombineHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, s := range sets {
		out.OnTransitionStart = chainTransition(out.OnTransitionStart, s.OnTransitionStart)
		out.OnTransitionEnd = chainTransition(out.OnTransitionEnd, s.OnTransitionEnd)
		out.OnRouteLeave = chainRoute(out.OnRouteLeave, s.OnRouteLeave)
		out.OnRouteChange = chainRoute(out.OnRouteChange, s.OnRouteChange)
		out.OnRouteEnter = chainRoute(out.OnRouteEnter, s.OnRouteEnter)
	}
	return out
}

func chainTransition(a, b func(context.Context, *TransitionEvent)) func(context.Context, *TransitionEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *TransitionEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainRoute(a, b func(context.Context, *RouteEvent)) func(context.Context, *RouteEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *RouteEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
