package observability

import (
	"context"
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the instrumentation name used by NewTracing.
const DefaultTracerName = "github.com/aretw0/wayfinder"

// Tracing opens one span per transition and records every route hook as a
// span event. Spans are keyed by transition ID, so start and end may come
// from different goroutines.
type Tracing struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]trace.Span
}

// NewTracing uses tracer, or the global provider's tracer when nil.
func NewTracing(tracer trace.Tracer) *Tracing {
	if tracer == nil {
		tracer = otel.Tracer(DefaultTracerName)
	}
	return &Tracing{tracer: tracer, spans: make(map[string]trace.Span)}
}

// Hooks returns the lifecycle hooks driving the spans.
func (tr *Tracing) Hooks() domain.LifecycleHooks {
	route := func(_ context.Context, e *domain.RouteEvent) {
		span := tr.span(e.TransitionID)
		if span == nil {
			return
		}
		span.AddEvent("route."+string(e.Phase), trace.WithAttributes(
			attribute.String("wayfinder.route_id", e.RouteID),
			attribute.String("wayfinder.route_path", e.Path),
		))
	}
	return domain.LifecycleHooks{
		OnTransitionStart: tr.start,
		OnTransitionEnd:   tr.end,
		OnRouteLeave:      route,
		OnRouteChange:     route,
		OnRouteEnter:      route,
	}
}

func (tr *Tracing) start(ctx context.Context, e *domain.TransitionEvent) {
	_, span := tr.tracer.Start(ctx, "wayfinder.transition",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(e.Timestamp),
		trace.WithAttributes(
			attribute.String("wayfinder.transition_id", e.TransitionID),
			attribute.String("wayfinder.pathname", e.Pathname),
		),
	)
	tr.mu.Lock()
	tr.spans[e.TransitionID] = span
	tr.mu.Unlock()
}

func (tr *Tracing) end(_ context.Context, e *domain.TransitionEvent) {
	tr.mu.Lock()
	span, ok := tr.spans[e.TransitionID]
	delete(tr.spans, e.TransitionID)
	tr.mu.Unlock()
	if !ok {
		return
	}

	span.SetAttributes(attribute.String("wayfinder.result", string(e.Result)))
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(e.Timestamp))
}

func (tr *Tracing) span(id string) trace.Span {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.spans[id]
}

// open reports how many spans are still open.
func (tr *Tracing) open() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.spans)
}
