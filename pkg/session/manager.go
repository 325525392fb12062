package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// ErrTooManyRedirects is returned when hooks keep redirecting a session.
var ErrTooManyRedirects = errors.New("too many redirects")

// DefaultMaxRedirects bounds the redirects followed by one Navigate call.
const DefaultMaxRedirects = 10

// Navigator resolves locations for a session. *wayfinder.Engine implements it.
type Navigator interface {
	Resolve(ctx context.Context, prev *domain.RouterState, loc *domain.Location) (*domain.RouterState, *domain.Transition, error)
	Hydrate(snap *domain.StateSnapshot) (*domain.RouterState, error)
	Href(to string, query domain.Query, from string) (string, error)
}

// Result describes how a Navigate call ended.
type Result struct {
	// State is the committed state, nil when the navigation was aborted.
	State *domain.RouterState
	// Snapshot is what the store holds for the session afterwards.
	Snapshot *domain.StateSnapshot
	// Redirects lists the paths followed before the final one.
	Redirects []string
	// Diff lists the routes left, changed and entered by a committed navigation.
	Diff    domain.BranchDiff
	Aborted bool
	Reason  any
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.StateStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker       ports.DistributedLocker // Optional distributed locker
	lockTTL      time.Duration
	maxRedirects int
	logger       *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long a distributed lock outlives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithMaxRedirects bounds the redirects followed by Navigate.
func WithMaxRedirects(n int) Option {
	return func(m *Manager) {
		m.maxRedirects = n
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:        store,
		locks:        make(map[string]*lockEntry),
		lockTTL:      30 * time.Second,
		maxRedirects: DefaultMaxRedirects,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves the snapshot of a session.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.StateSnapshot, error) {
	var snap *domain.StateSnapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snap, err
}

// Save persists the snapshot of a session.
func (m *Manager) Save(ctx context.Context, sessionID string, snap *domain.StateSnapshot) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, snap)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// Navigate moves a session to path. The previous snapshot, if any, is
// hydrated so only the hooks of the routes that actually change run.
// Redirects are followed; an abort leaves the stored snapshot untouched.
func (m *Manager) Navigate(ctx context.Context, nav Navigator, sessionID, path string) (*Result, error) {
	var res *Result
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		prev, err := m.previous(ctx, nav, sessionID)
		if err != nil {
			return err
		}

		res = &Result{}
		loc := domain.ParseLocation(path).WithAction(domain.ActionPush)
		for {
			state, t, err := nav.Resolve(ctx, prev, loc)
			if err != nil {
				return err
			}

			if to := t.Redirect(); to != nil {
				if len(res.Redirects) >= m.maxRedirects {
					return fmt.Errorf("session %q at %q: %w", sessionID, loc.Path(), ErrTooManyRedirects)
				}
				next, err := nav.Href(to.Pathname, to.Query, loc.Path())
				if err != nil {
					return fmt.Errorf("redirect from %q: %w", loc.Path(), err)
				}
				res.Redirects = append(res.Redirects, loc.Path())
				loc = domain.ParseLocation(next).WithAction(domain.ActionReplace).WithState(to.State)
				continue
			}

			if t.Cancelled() {
				res.Aborted = true
				res.Reason = t.AbortReason()
				if prev != nil {
					res.Snapshot = prev.Snapshot()
				}
				m.logger.DebugContext(ctx, "navigation aborted", "session_id", sessionID, "path", loc.Path(), "reason", res.Reason)
				return nil
			}

			res.State = state
			res.Diff = domain.Diff(prev, state)
			res.Snapshot = state.Snapshot()
			if err := m.store.Save(ctx, sessionID, res.Snapshot); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// previous loads and hydrates the committed state of a session. Unknown
// sessions, and snapshots that no longer fit the route tree, start fresh.
func (m *Manager) previous(ctx context.Context, nav Navigator, sessionID string) (*domain.RouterState, error) {
	snap, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	prev, err := nav.Hydrate(snap)
	if errors.Is(err, domain.ErrRouteNotFound) {
		m.logger.WarnContext(ctx, "session routes are gone, starting fresh", "session_id", sessionID, "err", err)
		return nil, nil
	}
	return prev, err
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
