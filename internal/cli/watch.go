package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/wayfinder"
)

// WatchRoutes reloads the engine whenever its route file changes and logs
// each reload until ctx ends. A failed reload keeps the previous routes.
func WatchRoutes(ctx context.Context, eng *wayfinder.Engine, logger *slog.Logger) error {
	reloads, err := eng.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range reloads {
			logger.Info("Routes reloaded", "count", eng.Routes().Len())
		}
	}()
	return nil
}
