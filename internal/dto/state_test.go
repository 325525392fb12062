package dto_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/wayfinder/internal/dto"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTransition(t *testing.T) {
	app := &domain.RouteNode{ID: "app", Path: "/"}
	user := &domain.RouteNode{ID: "user", Path: "users/:id"}
	state := &domain.RouterState{
		Location: domain.ParseLocation("/users/7"),
		Branch:   domain.Branch{app, user},
		Params:   domain.Params{"id": "7"},
	}

	res := dto.FromTransition(state, domain.NewTransition("t1"))
	require.NotNil(t, res.State)
	assert.Equal(t, []string{"app", "user"}, res.State.Routes)
	assert.False(t, res.Aborted)

	redirected := domain.NewTransition("t2")
	redirected.RedirectTo(domain.ParseLocation("/login"))
	res = dto.FromTransition(nil, redirected)
	assert.Nil(t, res.State)
	assert.Equal(t, "/login", res.Redirect.Pathname)
	assert.False(t, res.Aborted)

	aborted := domain.NewTransition("t3")
	aborted.Cancel(errors.New("unsaved changes"))
	res = dto.FromTransition(nil, aborted)
	assert.True(t, res.Aborted)
	assert.Equal(t, "unsaved changes", res.Reason)
}

func TestFromDiff(t *testing.T) {
	app := &domain.RouteNode{ID: "app", Path: "/"}
	inbox := &domain.RouteNode{ID: "inbox", Path: "inbox"}
	prev := &domain.RouterState{Branch: domain.Branch{app}}
	next := &domain.RouterState{Branch: domain.Branch{app, inbox}}
	loc := domain.ParseLocation("/inbox")

	d := dto.FromDiff(domain.Diff(prev, next), loc)
	require.NotNil(t, d)
	assert.Equal(t, []string{"inbox"}, d.Entering)
	assert.Empty(t, d.Leaving)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "leaving")

	assert.Nil(t, dto.FromDiff(domain.Diff(next, next), loc))
}

func TestFromResult(t *testing.T) {
	app := &domain.RouteNode{ID: "app", Path: "/"}
	login := &domain.RouteNode{ID: "login", Path: "login"}
	state := &domain.RouterState{
		Location: domain.ParseLocation("/login"),
		Branch:   domain.Branch{app, login},
		Params:   domain.Params{},
	}

	res := dto.FromResult(&session.Result{
		State:     state,
		Redirects: []string{"/admin"},
		Diff:      domain.Diff(nil, state),
	})
	require.NotNil(t, res.State)
	assert.Equal(t, []string{"/admin"}, res.Redirects)
	require.NotNil(t, res.Diff)
	assert.Equal(t, []string{"app", "login"}, res.Diff.Entering)

	res = dto.FromResult(&session.Result{Aborted: true, Reason: errors.New("nope")})
	assert.Nil(t, res.State)
	assert.Nil(t, res.Diff)
	assert.Equal(t, "nope", res.Reason)
}
