package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/pkg/adapters/file"
	"github.com/aretw0/wayfinder/pkg/adapters/loam"
	"github.com/aretw0/wayfinder/pkg/adapters/process"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/observability"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Runtime bundles what the commands build from a Config.
type Runtime struct {
	Config    *config.Config
	Engine    *wayfinder.Engine
	Loader    *file.RouteFile
	Registry  *registry.Registry
	Artifacts ports.ArtifactSource
	Logger    *slog.Logger

	// Metrics is set when cfg.HTTP.Metrics is on.
	Metrics *prometheus.Registry
}

// BuildEngine loads the route file of cfg into an Engine. Named hooks
// resolve to the process hooks of cfg.Hooks, then to the registry builtins;
// named artifacts come from the loam repository at cfg.Artifacts when one
// is configured.
func BuildEngine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{
		Config:   cfg,
		Loader:   file.NewRouteFile(cfg.Routes, file.WithLogger(logger)),
		Registry: registry.NewRegistry(),
		Logger:   logger,
	}

	if cfg.Hooks != "" {
		if err := registerProcessHooks(rt.Registry, cfg.Hooks); err != nil {
			return nil, err
		}
	}

	rt.Artifacts = rt.Registry
	if cfg.Artifacts != "" {
		src, err := loam.Open(cfg.Artifacts)
		if err != nil {
			return nil, fmt.Errorf("artifacts %s: %w", cfg.Artifacts, err)
		}
		rt.Artifacts = src
	}

	opts := []wayfinder.Option{
		wayfinder.WithName("wayfinder"),
		wayfinder.WithLogger(logger),
		wayfinder.WithBasename(cfg.Basename),
		wayfinder.WithHookResolver(rt.Registry),
		wayfinder.WithArtifactSource(rt.Artifacts),
		wayfinder.WithLifecycleHooks(observability.LogHooks(logger)),
		wayfinder.WithLifecycleHooks(observability.NewTracing(nil).Hooks()),
	}
	if cfg.HookTimeout > 0 {
		opts = append(opts, wayfinder.WithHookTimeout(cfg.HookTimeout))
	}
	if cfg.HTTP.Metrics {
		rt.Metrics = prometheus.NewRegistry()
		rt.Metrics.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, wayfinder.WithLifecycleHooks(observability.NewMetrics(rt.Metrics).Hooks()))
	}

	eng, err := wayfinder.NewEngine(ctx, rt.Loader, opts...)
	if err != nil {
		return nil, err
	}
	rt.Engine = eng
	logger.Debug("engine ready", "routes", rt.Loader.Path(), "count", eng.Routes().Len(), "basename", cfg.Basename)
	return rt, nil
}

// RouteConfigs reads the raw route definitions again, as the engine saw them.
func (rt *Runtime) RouteConfigs(ctx context.Context) ([]domain.RouteConfig, error) {
	return rt.Loader.LoadRoutes(ctx)
}

func registerProcessHooks(reg *registry.Registry, path string) error {
	hooks, err := process.LoadHooks(path)
	if err != nil {
		return err
	}
	runner := process.NewRunner(process.WithRegistry(hooks), process.WithBaseDir(filepath.Dir(path)))
	for _, name := range runner.Names() {
		fn, err := runner.Hook(name)
		if err != nil {
			return err
		}
		reg.RegisterHook(name, fn)
	}
	return nil
}
