package observability

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics records transitions as Prometheus metrics.
type Metrics struct {
	transitions *prom.CounterVec
	duration    *prom.HistogramVec
	hooks       *prom.CounterVec
	inFlight    prom.Gauge
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// uses a private registry, which is handy in tests.
func NewMetrics(reg prom.Registerer) *Metrics {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	m := &Metrics{
		transitions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "wayfinder",
			Name:      "transitions_total",
			Help:      "Transitions by result",
		}, []string{"result"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "wayfinder",
			Name:      "transition_duration_seconds",
			Help:      "Time from the start of a transition to its settlement",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		hooks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "wayfinder",
			Name:      "route_hooks_total",
			Help:      "Route hooks run, by route and phase",
		}, []string{"route", "phase"}),
		inFlight: prom.NewGauge(prom.GaugeOpts{
			Namespace: "wayfinder",
			Name:      "transitions_in_flight",
			Help:      "Transitions started and not yet settled",
		}),
	}
	reg.MustRegister(m.transitions, m.duration, m.hooks, m.inFlight)
	return m
}

// Hooks returns the lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	route := func(_ context.Context, e *domain.RouteEvent) {
		m.hooks.WithLabelValues(e.RouteID, string(e.Phase)).Inc()
	}
	return domain.LifecycleHooks{
		OnTransitionStart: func(context.Context, *domain.TransitionEvent) {
			m.inFlight.Inc()
		},
		OnTransitionEnd: func(_ context.Context, e *domain.TransitionEvent) {
			m.inFlight.Dec()
			m.transitions.WithLabelValues(string(e.Result)).Inc()
			m.duration.WithLabelValues(string(e.Result)).Observe(e.Duration.Seconds())
		},
		OnRouteLeave:  route,
		OnRouteChange: route,
		OnRouteEnter:  route,
	}
}
