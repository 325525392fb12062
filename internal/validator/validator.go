// Package validator lints a route tree for mistakes the compiler accepts:
// routes no path can reach, redirects that lead nowhere and artifacts the
// artifact source does not know.
package validator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/wayfinder/internal/matcher"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Kind classifies an Issue.
type Kind string

const (
	KindShadowed        Kind = "shadowed"
	KindDeadRedirect    Kind = "dead-redirect"
	KindMissingArtifact Kind = "missing-artifact"
)

// Issue is one finding about a route.
type Issue struct {
	Route   string `json:"route"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s [%s]: %s", i.Route, i.Kind, i.Message)
}

// Check runs every lint over tree. configs are the raw definitions the tree
// was built from; they carry the hook names. artifacts may be nil.
func Check(ctx context.Context, tree *domain.RouteTree, configs []domain.RouteConfig, artifacts ports.ArtifactSource) []Issue {
	var issues []Issue
	issues = append(issues, shadowed(tree.Routes)...)
	issues = append(issues, deadRedirects(tree, configs, "")...)
	issues = append(issues, missingArtifacts(ctx, tree, artifacts)...)
	return issues
}

// Validate is Check folded into a single error.
func Validate(ctx context.Context, tree *domain.RouteTree, configs []domain.RouteConfig, artifacts ports.ArtifactSource) error {
	issues := Check(ctx, tree, configs, artifacts)
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(issues), strings.Join(lines, "\n- "))
}

// shadowed reports static siblings an earlier sibling always wins against.
// Siblings match in declaration order (splats last), so a static route
// declared after a param sibling covering the same segments is never
// selected.
func shadowed(siblings []*domain.RouteNode) []Issue {
	var issues []Issue
	probe := domain.NewRouteTree(siblings)

	for _, n := range siblings {
		if !n.IsIndex() && len(n.ParamNames()) == 0 {
			m, ok := matcher.Match(probe, n.Path)
			if ok && m.Branch[0] != n {
				issues = append(issues, Issue{
					Route:   n.ID,
					Kind:    KindShadowed,
					Message: fmt.Sprintf("%q is always matched by %q declared before it", n.Path, m.Branch[0].Path),
				})
			}
		}
		issues = append(issues, shadowed(n.Children)...)
	}
	return issues
}

func deadRedirects(tree *domain.RouteTree, configs []domain.RouteConfig, parent string) []Issue {
	var issues []Issue
	for _, cfg := range configs {
		pattern := matcher.JoinPaths(parent, cfg.Path)
		route := cfg.ID
		if route == "" {
			route = pattern
		}
		for _, hook := range []string{cfg.OnEnter, cfg.OnChange, cfg.OnLeave} {
			target, ok := strings.CutPrefix(hook, "redirect:")
			if !ok || target == "" {
				continue
			}
			pathname := domain.ParseLocation(target).Pathname
			if !strings.HasPrefix(pathname, "/") {
				pathname = "/" + pathname
			}
			if _, ok := matcher.Match(tree, pathname); !ok {
				issues = append(issues, Issue{
					Route:   route,
					Kind:    KindDeadRedirect,
					Message: fmt.Sprintf("redirect target %q matches no route", target),
				})
			}
		}
		issues = append(issues, deadRedirects(tree, cfg.Children, pattern)...)
	}
	return issues
}

func missingArtifacts(ctx context.Context, tree *domain.RouteTree, source ports.ArtifactSource) []Issue {
	var issues []Issue
	tree.Walk(func(n *domain.RouteNode, _ int) bool {
		for _, name := range artifactNames(n) {
			if source == nil {
				issues = append(issues, Issue{
					Route:   n.ID,
					Kind:    KindMissingArtifact,
					Message: fmt.Sprintf("artifact %q is named but no artifact source is configured", name),
				})
				continue
			}
			if _, err := source.Resolve(ctx, name); err != nil {
				msg := fmt.Sprintf("artifact %q: %v", name, err)
				if errors.Is(err, domain.ErrArtifactNotFound) {
					msg = fmt.Sprintf("artifact %q not found", name)
				}
				issues = append(issues, Issue{Route: n.ID, Kind: KindMissingArtifact, Message: msg})
			}
		}
		return true
	})
	return issues
}

func artifactNames(n *domain.RouteNode) []string {
	var names []string
	if n.Artifact != nil && n.Artifact.Name != "" {
		names = append(names, n.Artifact.Name)
	}
	keys := make([]string, 0, len(n.Artifacts))
	for k := range n.Artifacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if ref := n.Artifacts[k]; ref != nil && ref.Name != "" {
			names = append(names, ref.Name)
		}
	}
	return names
}
