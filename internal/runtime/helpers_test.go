package runtime_test

import (
	"context"
	"sync"

	"github.com/aretw0/wayfinder/internal/compiler"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// recorder collects hook invocations in order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) hook(name string) domain.HookFunc {
	return func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
		r.add(name)
		return domain.Proceed(), nil
	}
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func mustTree(raw any) *domain.RouteTree {
	tree, err := compiler.Normalize(raw, nil)
	if err != nil {
		panic(err)
	}
	return tree
}

// appTree builds / > users/:id > settings and / > inbox, recording every hook.
func appTree(rec *recorder) *domain.RouteTree {
	route := func(id, path string, children ...domain.RouteConfig) domain.RouteConfig {
		return domain.RouteConfig{
			ID:         id,
			Path:       path,
			EnterHook:  rec.hook("enter:" + id),
			ChangeHook: rec.hook("change:" + id),
			LeaveHook:  rec.hook("leave:" + id),
			Children:   children,
		}
	}
	return mustTree(route("app", "/",
		route("user", "users/:id", route("settings", "settings")),
		route("inbox", "inbox"),
	))
}
