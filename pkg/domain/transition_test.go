package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_FirstCancelWins(t *testing.T) {
	tr := domain.NewTransition("t1")
	assert.False(t, tr.Cancelled())

	target := domain.ParseLocation("/login")
	tr.RedirectTo(target)
	tr.Cancel("later")

	assert.True(t, tr.Cancelled())
	assert.Same(t, target, tr.Redirect())
	assert.Nil(t, tr.AbortReason())
}

func TestAsyncHook(t *testing.T) {
	t.Run("Completes", func(t *testing.T) {
		hook := domain.AsyncHook(func(_ *domain.RouterState, _ *domain.Transition, done func(domain.Outcome, error)) {
			go func() {
				done(domain.Abort("nope"), nil)
				done(domain.Proceed(), nil)
			}()
		})
		out, err := hook(context.Background(), &domain.RouterState{}, domain.NewTransition("t"))
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeAbort, out.Kind)
		assert.Equal(t, "nope", out.Reason)
	})

	t.Run("Context Cancelled", func(t *testing.T) {
		hook := domain.AsyncHook(func(*domain.RouterState, *domain.Transition, func(domain.Outcome, error)) {})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := hook(ctx, &domain.RouterState{}, domain.NewTransition("t"))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestSnapshot_Hydrate(t *testing.T) {
	child := &domain.RouteNode{ID: "user", Path: "users/:id"}
	root := &domain.RouteNode{ID: "app", Path: "/", Children: []*domain.RouteNode{child}}
	tree := domain.NewRouteTree([]*domain.RouteNode{root})

	state := &domain.RouterState{
		Location: domain.ParseLocation("/users/7"),
		Branch:   domain.Branch{root, child},
		Params:   domain.Params{"id": "7"},
	}
	snap := state.Snapshot()
	assert.Equal(t, []string{"app", "user"}, snap.Routes)

	back, err := snap.Hydrate(tree)
	require.NoError(t, err)
	assert.Equal(t, state.Branch, back.Branch)
	assert.Equal(t, "7", back.Params["id"])

	snap.Routes = append(snap.Routes, "ghost")
	_, err = snap.Hydrate(tree)
	assert.ErrorIs(t, err, domain.ErrRouteNotFound)
}
