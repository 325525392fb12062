package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/wayfinder/internal/config"
	"github.com/aretw0/wayfinder/pkg/adapters/file"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/adapters/redis"
	"github.com/aretw0/wayfinder/pkg/persistence/middleware"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/session"
)

// BuildSessions creates the session manager selected by cfg. The returned
// close func releases the store's connections.
func BuildSessions(cfg *config.Config, logger *slog.Logger) (*session.Manager, func() error, error) {
	closeFn := func() error { return nil }
	opts := []session.Option{session.WithLogger(logger)}
	if cfg.Sessions.LockTTL > 0 {
		opts = append(opts, session.WithLockTTL(cfg.Sessions.LockTTL))
	}
	if cfg.Sessions.MaxRedirects > 0 {
		opts = append(opts, session.WithMaxRedirects(cfg.Sessions.MaxRedirects))
	}

	var store ports.StateStore
	switch cfg.Sessions.Store {
	case "", "memory":
		store = memory.NewStore()
	case "file":
		store = file.NewStore(cfg.Sessions.Dir)
	case "redis":
		var ropts []redis.Option
		if cfg.Redis.Prefix != "" {
			ropts = append(ropts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			ropts = append(ropts, redis.WithTTL(cfg.Redis.TTL))
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ropts...)
		if cfg.Redis.Lock {
			opts = append(opts, session.WithLocker(redis.NewLocker(rs.Client(), cfg.Redis.Prefix)))
		}
		store, closeFn = rs, rs.Close
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Sessions.Store)
	}

	var mws []middleware.Middleware
	if len(cfg.Sessions.Mask) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(cfg.Sessions.Mask))
	}
	active, fallback, err := cfg.Sessions.Keys()
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		}))
	}

	logger.Debug("session store ready", "store", cfg.Sessions.Store, "encrypted", active != nil, "masked", len(cfg.Sessions.Mask))
	return session.NewManager(middleware.Chain(store, mws...), opts...), closeFn, nil
}
