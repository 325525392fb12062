/*
Package observability turns transition lifecycle events into metrics, traces
and audit logs.

Each helper returns a domain.LifecycleHooks value; combine them with
domain.CombineHooks and pass the result to wayfinder.WithLifecycleHooks.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	tracing := observability.NewTracing(nil)
	hooks := domain.CombineHooks(metrics.Hooks(), tracing.Hooks(), observability.LogHooks(logger))
*/
package observability
