package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// LogHooks writes an audit line for every transition and route hook.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	route := func(ctx context.Context, e *domain.RouteEvent) {
		logger.DebugContext(ctx, "route hook",
			"transition", e.TransitionID,
			"route", e.RouteID,
			"phase", e.Phase,
		)
	}
	return domain.LifecycleHooks{
		OnTransitionStart: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition started", "transition", e.TransitionID, "path", e.Pathname)
		},
		OnTransitionEnd: func(ctx context.Context, e *domain.TransitionEvent) {
			level := slog.LevelInfo
			if e.Err != nil {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "transition settled",
				"transition", e.TransitionID,
				"path", e.Pathname,
				"result", e.Result,
				"duration", e.Duration,
				"err", e.Err,
			)
		},
		OnRouteLeave:  route,
		OnRouteChange: route,
		OnRouteEnter:  route,
	}
}
