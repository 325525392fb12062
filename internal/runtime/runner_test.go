package runtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/internal/runtime"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	err   error
	t     *domain.Transition
	state *domain.RouterState
}

func capture(ch chan<- result) runtime.Callback {
	return func(err error, t *domain.Transition, state *domain.RouterState) {
		ch <- result{err, t, state}
	}
}

// countingDelegate wraps DefaultDelegate and counts artifact loads.
type countingDelegate struct {
	*runtime.DefaultDelegate
	mu    sync.Mutex
	loads int
}

func (d *countingDelegate) GetComponents(ctx context.Context, next *domain.RouterState) ([]*domain.ArtifactSet, error) {
	d.mu.Lock()
	d.loads++
	d.mu.Unlock()
	return d.DefaultDelegate.GetComponents(ctx, next)
}

func (d *countingDelegate) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loads
}

func TestRunTransition_Success(t *testing.T) {
	tree := mustTree(domain.RouteConfig{ID: "user", Path: "users/:id", ArtifactRef: domain.Artifact("page")})
	delegate := runtime.NewDefaultDelegate(nil)

	state, err := runtime.NewHookPipeline().RunTransition(context.Background(), nil, tree, domain.ParseLocation("/users/5"), delegate, domain.NewTransition("t"))
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, []string{"user"}, state.Branch.IDs())
	assert.Equal(t, "5", state.Params["id"])
	assert.Equal(t, "page", state.Artifacts[0].Single)
}

func TestRunner_CommitAndCallback(t *testing.T) {
	rec := &recorder{}
	tree := appTree(rec)
	r := runtime.NewRunner()
	ch := make(chan result, 1)

	r.Run(context.Background(), tree, domain.ParseLocation("/users/1"), runtime.NewDefaultDelegate(nil), capture(ch))
	res := <-ch

	require.NoError(t, res.err)
	require.NotNil(t, res.state)
	assert.False(t, res.t.Cancelled())
	assert.Same(t, res.state, r.State())
	assert.False(t, r.IsTransitioning())
	assert.Equal(t, []string{"enter:app", "enter:user"}, rec.list())

	r.Run(context.Background(), tree, domain.ParseLocation("/users/2"), runtime.NewDefaultDelegate(nil), capture(ch))
	res = <-ch
	require.NotNil(t, res.state)
	assert.Equal(t, []string{"enter:app", "enter:user", "change:user"}, rec.list())
}

func TestRunner_CancelledLeavesStateAndSkipsLoader(t *testing.T) {
	tree := mustTree([]domain.RouteConfig{
		{ID: "home", Path: "home"},
		{ID: "admin", Path: "admin", EnterHook: func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
			return domain.Abort("forbidden"), nil
		}},
	})
	delegate := &countingDelegate{DefaultDelegate: runtime.NewDefaultDelegate(nil)}
	r := runtime.NewRunner()
	ch := make(chan result, 1)

	r.Run(context.Background(), tree, domain.ParseLocation("/home"), delegate, capture(ch))
	committed := (<-ch).state
	require.NotNil(t, committed)
	require.Equal(t, 1, delegate.count())

	r.Run(context.Background(), tree, domain.ParseLocation("/admin"), delegate, capture(ch))
	res := <-ch
	require.NoError(t, res.err)
	assert.Nil(t, res.state)
	assert.True(t, res.t.Cancelled())
	assert.Equal(t, "forbidden", res.t.AbortReason())
	assert.Same(t, committed, r.State())
	assert.Equal(t, 1, delegate.count(), "loader must not run for a cancelled transition")
}

func TestRunner_Redirect(t *testing.T) {
	login := domain.ParseLocation("/login")
	tree := mustTree(domain.RouteConfig{ID: "private", Path: "private", EnterHook: func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
		return domain.RedirectTo(login), nil
	}})
	r := runtime.NewRunner()
	ch := make(chan result, 1)

	r.Run(context.Background(), tree, domain.ParseLocation("/private"), runtime.NewDefaultDelegate(nil), capture(ch))
	res := <-ch
	assert.Nil(t, res.state)
	assert.Same(t, login, res.t.Redirect())
	assert.Nil(t, r.State())
}

func TestRunner_NoMatch(t *testing.T) {
	tree := mustTree(domain.RouteConfig{ID: "home", Path: "home"})
	r := runtime.NewRunner()
	ch := make(chan result, 1)

	r.Run(context.Background(), tree, domain.ParseLocation("/home"), runtime.NewDefaultDelegate(nil), capture(ch))
	committed := (<-ch).state

	r.Run(context.Background(), tree, domain.ParseLocation("/nowhere"), runtime.NewDefaultDelegate(nil), capture(ch))
	res := <-ch
	assert.NoError(t, res.err)
	assert.Nil(t, res.state)
	assert.False(t, res.t.Cancelled())
	assert.Same(t, committed, r.State())
}

func TestRunner_Error(t *testing.T) {
	boom := errors.New("boom")
	tree := mustTree(domain.RouteConfig{ID: "x", Path: "x", ArtifactRef: domain.LazyArtifact(func(context.Context, *domain.RouterState) (any, error) {
		return nil, boom
	})})
	r := runtime.NewRunner()
	ch := make(chan result, 1)

	r.Run(context.Background(), tree, domain.ParseLocation("/x"), runtime.NewDefaultDelegate(nil), capture(ch))
	res := <-ch
	assert.ErrorIs(t, res.err, boom)
	assert.Nil(t, res.state)
	assert.Nil(t, r.State())
}

func TestRunner_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	slow := domain.AsyncHook(func(_ *domain.RouterState, _ *domain.Transition, done func(domain.Outcome, error)) {
		close(entered)
		go func() {
			<-release
			done(domain.Proceed(), nil)
		}()
	})
	tree := mustTree([]domain.RouteConfig{
		{ID: "a", Path: "a", EnterHook: slow},
		{ID: "b", Path: "b"},
	})

	var ends []domain.TransitionResult
	var mu sync.Mutex
	r := runtime.NewRunner(runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnTransitionEnd: func(_ context.Context, e *domain.TransitionEvent) {
			mu.Lock()
			ends = append(ends, e.Result)
			mu.Unlock()
		},
	}))
	delegate := &countingDelegate{DefaultDelegate: runtime.NewDefaultDelegate(nil)}

	var calls []result
	var callsMu sync.Mutex
	record := func(err error, tr *domain.Transition, s *domain.RouterState) {
		callsMu.Lock()
		calls = append(calls, result{err, tr, s})
		callsMu.Unlock()
	}

	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		r.Run(context.Background(), tree, domain.ParseLocation("/a"), delegate, record)
	}()

	<-entered
	assert.True(t, r.IsTransitioning())
	r.Run(context.Background(), tree, domain.ParseLocation("/b"), delegate, record)
	close(release)

	select {
	case <-doneA:
	case <-time.After(time.Second):
		t.Fatal("superseded transition did not return")
	}

	callsMu.Lock()
	defer callsMu.Unlock()
	require.Len(t, calls, 1, "only the newest transition reports back")
	require.NotNil(t, calls[0].state)
	assert.Equal(t, []string{"b"}, calls[0].state.Branch.IDs())
	assert.Equal(t, []string{"b"}, r.State().Branch.IDs())
	assert.Equal(t, 1, delegate.count())

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []domain.TransitionResult{domain.ResultCommitted, domain.ResultSuperseded}, ends)
}

func TestRunner_InitialState(t *testing.T) {
	rec := &recorder{}
	tree := appTree(rec)
	initial := stateFor(tree, "/users/1")

	r := runtime.NewRunner(runtime.WithInitialState(initial))
	assert.Same(t, initial, r.State())

	ch := make(chan result, 1)
	r.Run(context.Background(), tree, domain.ParseLocation("/inbox"), runtime.NewDefaultDelegate(nil), capture(ch))
	<-ch
	assert.Equal(t, []string{"leave:user", "enter:inbox"}, rec.list())
}

func TestRunner_StartKeepsCallOrder(t *testing.T) {
	release := make(chan struct{})
	blocking := domain.AsyncHook(func(_ *domain.RouterState, _ *domain.Transition, done func(domain.Outcome, error)) {
		go func() {
			<-release
			done(domain.Proceed(), nil)
		}()
	})
	tree := mustTree([]domain.RouteConfig{
		{ID: "slow", Path: "slow", EnterHook: blocking},
		{ID: "fast", Path: "fast"},
	})
	r := runtime.NewRunner()
	ch := make(chan result, 2)
	delegate := runtime.NewDefaultDelegate(nil)

	first := r.Start(context.Background(), tree, domain.ParseLocation("/slow"), delegate, capture(ch))
	second := r.Start(context.Background(), tree, domain.ParseLocation("/fast"), delegate, capture(ch))
	<-second
	close(release)
	<-first

	require.Len(t, ch, 1)
	res := <-ch
	require.NotNil(t, res.state)
	assert.Equal(t, []string{"fast"}, r.State().Branch.IDs())
}
