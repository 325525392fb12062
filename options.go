package wayfinder

import (
	"log/slog"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/internal/runtime"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

type settings struct {
	logger       *slog.Logger
	basename     string
	hooks        ports.HookResolver
	source       ports.ArtifactSource
	lifecycle    domain.LifecycleHooks
	hookTimeout  time.Duration
	initialState *domain.RouterState
	onUpdate     func(*domain.RouterState)
	onError      func(error)
	name         string
}

// Option configures a Router or an Engine. Options that only make sense for
// a Router (OnUpdate, OnError, WithInitialState) are ignored by an Engine.
type Option func(*settings)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithBasename mounts every route under basename.
func WithBasename(basename string) Option {
	return func(s *settings) {
		s.basename = basename
	}
}

// WithHookResolver resolves the named hooks of declarative route configs.
func WithHookResolver(hooks ports.HookResolver) Option {
	return func(s *settings) {
		s.hooks = hooks
	}
}

// WithArtifactSource resolves named artifacts.
func WithArtifactSource(src ports.ArtifactSource) Option {
	return func(s *settings) {
		s.source = src
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.lifecycle = domain.CombineHooks(s.lifecycle, hooks)
	}
}

// WithHookTimeout bounds every transition hook. Without it a hook that never
// settles stalls its transition until a newer one supersedes it.
func WithHookTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.hookTimeout = d
	}
}

// WithInitialState hands the Router a state resolved elsewhere, typically on
// a server. The first transition to the same location reuses its branch,
// params and artifacts instead of matching and loading again.
func WithInitialState(state *domain.RouterState) Option {
	return func(s *settings) {
		s.initialState = state
	}
}

// OnUpdate is called after every committed transition.
func OnUpdate(fn func(state *domain.RouterState)) Option {
	return func(s *settings) {
		s.onUpdate = fn
	}
}

// OnError handles failed transitions. The default handler panics.
func OnError(fn func(err error)) Option {
	return func(s *settings) {
		s.onError = fn
	}
}

// WithName labels the engine in logs and session keys.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.basename != "" {
		s.logger = s.logger.With("basename", s.basename)
	}
	if s.name != "" {
		s.logger = s.logger.With("routes", s.name)
	}
	if s.onError == nil {
		s.onError = func(err error) { panic(err) }
	}
	return s
}

func (s *settings) runtimeOptions() []runtime.Option {
	return []runtime.Option{
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(s.lifecycle),
		runtime.WithHookTimeout(s.hookTimeout),
		runtime.WithArtifactSource(s.source),
	}
}
