package registry

import (
	"context"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Builtin resolves the hooks every registry knows by name alone:
//
//	proceed            lets the transition continue
//	redirect:<path>    redirects to path, query included
//	abort              aborts the transition
//	abort:<reason>     aborts with reason
//
// Registered hooks shadow builtins of the same name.
func Builtin(name string) (domain.HookFunc, bool) {
	kind, arg, _ := strings.Cut(name, ":")
	switch kind {
	case "proceed":
		return func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
			return domain.Proceed(), nil
		}, arg == ""
	case "redirect":
		if arg == "" {
			return nil, false
		}
		return func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
			return domain.RedirectTo(domain.ParseLocation(arg)), nil
		}, true
	case "abort":
		return func(context.Context, *domain.RouterState, *domain.Transition) (domain.Outcome, error) {
			return domain.Abort(arg), nil
		}, true
	}
	return nil, false
}
