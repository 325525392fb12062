package wayfinder_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// updates collects committed states and handled errors.
type updates struct {
	mu     sync.Mutex
	states []*domain.RouterState
	errs   []error
	calls  []string
}

func (u *updates) options() []wayfinder.Option {
	return []wayfinder.Option{
		wayfinder.OnUpdate(func(s *domain.RouterState) {
			u.mu.Lock()
			defer u.mu.Unlock()
			u.states = append(u.states, s)
		}),
		wayfinder.OnError(func(err error) {
			u.mu.Lock()
			defer u.mu.Unlock()
			u.errs = append(u.errs, err)
		}),
	}
}

func (u *updates) hook(name string) domain.HookFunc {
	return func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.calls = append(u.calls, name)
		return domain.Proceed(), nil
	}
}

func (u *updates) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.states)
}

func (u *updates) errors() []error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]error(nil), u.errs...)
}

func (u *updates) hookCalls() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.calls...)
}

func redirect(to string) domain.HookFunc {
	return func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
		return domain.RedirectTo(domain.ParseLocation(to)), nil
	}
}

func abort(reason string) domain.HookFunc {
	return func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
		return domain.Abort(reason), nil
	}
}

func appRoutes(u *updates) []domain.RouteConfig {
	return []domain.RouteConfig{{
		ID:        "root",
		Path:      "/",
		EnterHook: u.hook("enter:root"),
		Children: []domain.RouteConfig{
			{ID: "home", EnterHook: u.hook("enter:home")},
			{ID: "user", Path: "users/:id", EnterHook: u.hook("enter:user"), ChangeHook: u.hook("change:user"), LeaveHook: u.hook("leave:user")},
			{ID: "inbox", Path: "inbox", EnterHook: u.hook("enter:inbox")},
			{ID: "admin", Path: "admin", EnterHook: redirect("/login")},
			{ID: "guarded", Path: "guarded", EnterHook: abort("not allowed")},
			{ID: "login", Path: "login"},
		},
	}}
}

func listen(t *testing.T, history *memory.History, u *updates, opts ...wayfinder.Option) *wayfinder.Router {
	t.Helper()
	router, err := wayfinder.New(history, appRoutes(u), append(u.options(), opts...)...)
	require.NoError(t, err)
	require.NoError(t, router.Listen(context.Background()))
	t.Cleanup(router.Close)
	router.Wait()
	return router
}

func TestNew_Errors(t *testing.T) {
	_, err := wayfinder.New(nil, []domain.RouteConfig{{Path: "/"}})
	assert.ErrorIs(t, err, wayfinder.ErrNoHistory)

	_, err = wayfinder.New(memory.NewHistory(), []domain.RouteConfig{{Path: "users/:"}})
	var cfgErr *domain.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = wayfinder.New(memory.NewHistory(), []domain.RouteConfig{})
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRouter_ListenCommitsCurrentLocation(t *testing.T) {
	u := &updates{}
	router := listen(t, memory.NewHistory("/users/42?tab=posts"), u)

	state := router.State()
	require.NotNil(t, state)
	assert.Equal(t, []string{"root", "user"}, state.Branch.IDs())
	assert.Equal(t, "42", state.Params["id"])
	assert.Equal(t, 1, u.count())
	assert.Equal(t, []string{"enter:root", "enter:user"}, u.hookCalls())

	assert.True(t, router.IsActive("/users", nil))
	assert.True(t, router.IsActive("/users/42", domain.Query{"tab": {"posts"}}))
	assert.False(t, router.IsActive("/user", nil))
	assert.False(t, router.IsActive("/users/42", domain.Query{"tab": {"likes"}}))

	assert.ErrorIs(t, router.Listen(context.Background()), wayfinder.ErrAlreadyListening)
}

func TestRouter_TransitionToPushes(t *testing.T) {
	u := &updates{}
	history := memory.NewHistory("/users/1")
	router := listen(t, history, u)

	router.TransitionTo("/users/2", nil, nil)
	router.Wait()
	router.TransitionTo("/inbox", domain.Query{"unread": {"1"}}, nil)
	router.Wait()

	assert.Len(t, history.Entries(), 3)
	assert.Equal(t, "/inbox?unread=1", history.Location().Path())
	assert.Equal(t, []string{"root", "inbox"}, router.State().Branch.IDs())
	assert.Equal(t, []string{
		"enter:root", "enter:user",
		"change:user",
		"leave:user", "enter:inbox",
	}, u.hookCalls())

	router.GoBack()
	router.Wait()
	assert.Equal(t, "2", router.State().Params["id"])

	router.GoForward()
	router.Wait()
	assert.Equal(t, "inbox", router.State().Branch.Leaf().ID)
}

func TestRouter_RedirectReplacesEntry(t *testing.T) {
	u := &updates{}
	history := memory.NewHistory("/")
	router := listen(t, history, u)

	router.TransitionTo("/admin", nil, nil)
	router.Wait()

	assert.Equal(t, "/login", history.Location().Pathname)
	assert.Equal(t, domain.ActionReplace, history.Location().Action)
	assert.Len(t, history.Entries(), 2)
	assert.Equal(t, "login", router.State().Branch.Leaf().ID)
	assert.Empty(t, u.errors())
}

func TestRouter_AbortRevertsHistory(t *testing.T) {
	u := &updates{}
	history := memory.NewHistory("/")
	router := listen(t, history, u)
	before := router.State()

	router.TransitionTo("/guarded", nil, nil)
	router.Wait()

	assert.Equal(t, 0, history.Index())
	assert.Equal(t, "/", history.Location().Pathname)
	assert.Same(t, before, router.State())
	assert.Equal(t, 1, u.count())
	assert.Empty(t, u.errors())

	// The ignored history change must not swallow the next navigation.
	router.TransitionTo("/inbox", nil, nil)
	router.Wait()
	assert.Equal(t, "inbox", router.State().Branch.Leaf().ID)
}

func TestRouter_AbortAfterReplaceRestoresEntry(t *testing.T) {
	u := &updates{}
	history := memory.NewHistory("/")
	router := listen(t, history, u)

	router.ReplaceWith("/guarded", nil, nil)
	router.Wait()

	assert.Len(t, history.Entries(), 1)
	assert.Equal(t, "/", history.Location().Pathname)
	assert.Equal(t, "home", router.State().Branch.Leaf().ID)

	router.TransitionTo("/inbox", nil, nil)
	router.Wait()
	assert.Equal(t, "/inbox", history.Location().Pathname)
	assert.Equal(t, "inbox", router.State().Branch.Leaf().ID)
	assert.Empty(t, u.errors())
}

func TestRouter_AbortOnPopRestoresEntry(t *testing.T) {
	u := &updates{}
	history := memory.NewHistory("/guarded", "/")
	router := listen(t, history, u)

	router.GoBack()
	router.Wait()

	assert.Equal(t, 0, history.Index())
	assert.Equal(t, "/", history.Location().Pathname)
	assert.Equal(t, "home", router.State().Branch.Leaf().ID)

	router.TransitionTo("/users/3", nil, nil)
	router.Wait()
	assert.Equal(t, "3", router.State().Params["id"])
}

func TestRouter_InitialAbortIsAnError(t *testing.T) {
	u := &updates{}
	router := listen(t, memory.NewHistory("/guarded"), u)

	assert.Nil(t, router.State())
	errs := u.errors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrInitialAbort)
}

func TestRouter_NoMatchKeepsState(t *testing.T) {
	u := &updates{}
	router := listen(t, memory.NewHistory("/inbox"), u)
	before := router.State()

	router.TransitionTo("/nowhere/at/all", nil, nil)
	router.Wait()

	assert.Same(t, before, router.State())
	assert.Empty(t, u.errors())
	assert.Equal(t, 1, u.count())
}

func TestRouter_HookErrorGoesToHandler(t *testing.T) {
	u := &updates{}
	boom := errors.New("boom")
	routes := []domain.RouteConfig{{
		ID:   "broken",
		Path: "/broken",
		EnterHook: func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
			return domain.Outcome{}, boom
		},
	}}
	router, err := wayfinder.New(memory.NewHistory("/broken"), routes, u.options()...)
	require.NoError(t, err)
	require.NoError(t, router.Listen(context.Background()))
	router.Wait()
	router.Close()

	errs := u.errors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
	var hookErr *domain.HookError
	require.ErrorAs(t, errs[0], &hookErr)
	assert.Equal(t, "broken", hookErr.RouteID)
}

func TestRouter_TransitionHooksRunFirst(t *testing.T) {
	u := &updates{}
	router := listen(t, memory.NewHistory("/"), u)

	remove := router.AddTransitionHook(u.hook("global"))
	router.TransitionTo("/users/1", nil, nil)
	router.Wait()

	remove()
	router.TransitionTo("/inbox", nil, nil)
	router.Wait()

	assert.Equal(t, []string{
		"enter:root", "enter:home",
		"global", "enter:user",
		"leave:user", "enter:inbox",
	}, u.hookCalls())
}

func TestRouter_GlobalHookCanBlockNavigation(t *testing.T) {
	u := &updates{}
	history := memory.NewHistory("/")
	router := listen(t, history, u)

	router.AddTransitionHook(abort("unsaved changes"))
	router.TransitionTo("/inbox", nil, nil)
	router.Wait()

	assert.Equal(t, "home", router.State().Branch.Leaf().ID)
	assert.Equal(t, "/", history.Location().Pathname)
}

func TestRouter_InitialStateSkipsMatchAndLoad(t *testing.T) {
	u := &updates{}
	routes := []domain.RouteConfig{{
		ID:   "page",
		Path: "/page",
		ArtifactRef: domain.LazyArtifact(func(context.Context, *domain.RouterState) (any, error) {
			return nil, errors.New("must not load")
		}),
	}}
	probe, err := wayfinder.New(memory.NewHistory("/"), routes)
	require.NoError(t, err)
	tree := probe.Routes()
	page, ok := tree.Find("page")
	require.True(t, ok)

	preset := &domain.RouterState{
		Location:  domain.ParseLocation("/page"),
		Branch:    domain.Branch{page},
		Params:    domain.Params{},
		Artifacts: []*domain.ArtifactSet{{Single: "rendered on the server"}},
	}
	router, err := wayfinder.New(memory.NewHistory("/page"), tree,
		append(u.options(), wayfinder.WithInitialState(preset))...)
	require.NoError(t, err)
	require.NoError(t, router.Listen(context.Background()))
	router.Wait()
	defer router.Close()

	require.Empty(t, u.errors())
	require.NotNil(t, router.State())
	assert.Equal(t, "rendered on the server", router.State().ArtifactFor(page).Single)
}

func TestRouter_BasenamePaths(t *testing.T) {
	u := &updates{}
	history := memory.NewHistory("/app/users/1")
	router := listen(t, history, u, wayfinder.WithBasename("/app"))

	require.NotNil(t, router.State())
	assert.Equal(t, "1", router.State().Params["id"])

	assert.Equal(t, "/app/inbox", router.MakePath("/inbox", nil))
	assert.Equal(t, "/app/users/1/settings?tab=a", router.MakePath("settings", domain.Query{"tab": {"a"}}))
	assert.Equal(t, "/app/inbox", router.MakeHref("../../inbox", nil))
	assert.Equal(t, "/app", router.MakePath("../../../..", nil))

	router.TransitionTo("../2", nil, nil)
	router.Wait()
	assert.Equal(t, "/app/users/2", history.Location().Pathname)
	assert.Equal(t, "2", router.State().Params["id"])

	router.TransitionTo("/admin", nil, nil)
	router.Wait()
	assert.Equal(t, "/app/login", history.Location().Pathname)
}

func TestRouter_MakeHrefUsesHistoryEncoding(t *testing.T) {
	u := &updates{}
	router := listen(t, memory.NewHashHistory("/users/1"), u)

	assert.Equal(t, "/users/1/edit", router.MakePath("edit", nil))
	assert.Equal(t, "#/users/1/edit", router.MakeHref("edit", nil))
	assert.Equal(t, "#/inbox?unread=1", router.MakeHref("/inbox", domain.Query{"unread": {"1"}}))
}

func TestRouter_RelativeRedirectFollowsTarget(t *testing.T) {
	u := &updates{}
	history := memory.NewHistory("/")
	router, err := wayfinder.New(history, []domain.RouteConfig{{
		ID:   "root",
		Path: "/",
		Children: []domain.RouteConfig{
			{ID: "home"},
			{ID: "user", Path: "users/:id", Children: []domain.RouteConfig{
				{ID: "edit", Path: "edit", EnterHook: redirect("../view?from=edit")},
				{ID: "view", Path: "view"},
			}},
		},
	}}, u.options()...)
	require.NoError(t, err)
	require.NoError(t, router.Listen(context.Background()))
	t.Cleanup(router.Close)
	router.Wait()

	router.TransitionTo("/users/7/edit", nil, nil)
	router.Wait()

	assert.Equal(t, "/users/7/view?from=edit", history.Location().Path())
	assert.Equal(t, "view", router.State().Branch.Leaf().ID)
	assert.Equal(t, "7", router.State().Params["id"])
	assert.Empty(t, u.errors())
}

func TestRouter_SetRoutesRerunsCurrentLocation(t *testing.T) {
	u := &updates{}
	history := memory.NewHistory("/late")
	router, err := wayfinder.New(history, []domain.RouteConfig{{ID: "early", Path: "/early"}}, u.options()...)
	require.NoError(t, err)
	require.NoError(t, router.Listen(context.Background()))
	defer router.Close()
	router.Wait()
	assert.Nil(t, router.State())

	require.NoError(t, router.SetRoutes([]domain.RouteConfig{{ID: "late", Path: "/late"}}))
	router.Wait()
	require.NotNil(t, router.State())
	assert.Equal(t, "late", router.State().Branch.Leaf().ID)

	var cfgErr *domain.ConfigError
	assert.ErrorAs(t, router.SetRoutes([]domain.RouteConfig{{Path: "*rest/x"}}), &cfgErr)
	assert.Equal(t, "late", router.Routes().Routes[0].ID)
}
