package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

type config struct {
	logger       *slog.Logger
	hooks        domain.LifecycleHooks
	hookTimeout  time.Duration
	source       ports.ArtifactSource
	initialState *domain.RouterState
	pipeline     *HookPipeline
	basename     string
}

// Option configures the pipeline, loader and runner.
type Option func(*config)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithHookTimeout bounds every hook. Zero, the default, waits forever.
func WithHookTimeout(d time.Duration) Option {
	return func(c *config) {
		c.hookTimeout = d
	}
}

// WithArtifactSource sets where named artifacts are resolved.
func WithArtifactSource(src ports.ArtifactSource) Option {
	return func(c *config) {
		c.source = src
	}
}

// WithInitialState presets the runner's committed state.
func WithInitialState(state *domain.RouterState) Option {
	return func(c *config) {
		c.initialState = state
	}
}

// WithPipeline makes the runner use an existing pipeline.
func WithPipeline(p *HookPipeline) Option {
	return func(c *config) {
		c.pipeline = p
	}
}

// WithBasename makes the delegate match pathnames relative to basename.
// Locations outside it match nothing.
func WithBasename(basename string) Option {
	return func(c *config) {
		c.basename = basename
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c
}
