package dsl

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// RouteBuilder provides a fluent API for configuring a route.
type RouteBuilder struct {
	config   domain.RouteConfig
	children []*RouteBuilder
	parent   *RouteBuilder
}

// Route adds a child route and returns its builder.
func (r *RouteBuilder) Route(path string) *RouteBuilder {
	child := &RouteBuilder{config: domain.RouteConfig{Path: path}, parent: r}
	r.children = append(r.children, child)
	return child
}

// Index adds an index child, matched when the parent consumed the whole path.
func (r *RouteBuilder) Index() *RouteBuilder {
	return r.Route("")
}

// End returns the parent builder, or r itself for top-level routes.
func (r *RouteBuilder) End() *RouteBuilder {
	if r.parent == nil {
		return r
	}
	return r.parent
}

// ID overrides the default route ID (the absolute pattern).
func (r *RouteBuilder) ID(id string) *RouteBuilder {
	r.config.ID = id
	return r
}

// Artifact sets the single artifact value of the route.
func (r *RouteBuilder) Artifact(v any) *RouteBuilder {
	r.config.ArtifactRef = domain.Artifact(v)
	return r
}

// Lazy sets a single artifact loaded when the route is matched.
func (r *RouteBuilder) Lazy(fn func(ctx context.Context, state *domain.RouterState) (any, error)) *RouteBuilder {
	r.config.ArtifactRef = domain.LazyArtifact(fn)
	return r
}

// Ref sets the single artifact to a name resolved by the artifact source.
func (r *RouteBuilder) Ref(name string) *RouteBuilder {
	r.config.ArtifactRef = domain.NamedArtifact(name)
	return r
}

// Named adds a keyed artifact. v may be a plain value or an *domain.ArtifactRef.
func (r *RouteBuilder) Named(key string, v any) *RouteBuilder {
	if r.config.ArtifactRefs == nil {
		r.config.ArtifactRefs = make(map[string]*domain.ArtifactRef)
	}
	ref, ok := v.(*domain.ArtifactRef)
	if !ok {
		ref = domain.Artifact(v)
	}
	r.config.ArtifactRefs[key] = ref
	return r
}

// OnEnter sets the hook run when the route joins the branch.
func (r *RouteBuilder) OnEnter(h domain.HookFunc) *RouteBuilder {
	r.config.EnterHook = h
	return r
}

// OnChange sets the hook run when the route stays but its params change.
func (r *RouteBuilder) OnChange(h domain.HookFunc) *RouteBuilder {
	r.config.ChangeHook = h
	return r
}

// OnLeave sets the hook run when the route drops out of the branch.
func (r *RouteBuilder) OnLeave(h domain.HookFunc) *RouteBuilder {
	r.config.LeaveHook = h
	return r
}

// OnEnterNamed references an enter hook registered under name.
func (r *RouteBuilder) OnEnterNamed(name string) *RouteBuilder {
	r.config.OnEnter = name
	return r
}

// Terminal stops matching at this route once the path is consumed.
func (r *RouteBuilder) Terminal() *RouteBuilder {
	r.config.Terminal = true
	return r
}

// Meta attaches a metadata value to the route.
func (r *RouteBuilder) Meta(key string, value any) *RouteBuilder {
	if r.config.Meta == nil {
		r.config.Meta = make(map[string]any)
	}
	r.config.Meta[key] = value
	return r
}

// Build returns the underlying domain.RouteConfig, children included.
// This is primarily used by the Builder, but exposed for advanced usage.
func (r *RouteBuilder) Build() domain.RouteConfig {
	cfg := r.config
	cfg.Children = make([]domain.RouteConfig, len(r.children))
	for i, c := range r.children {
		cfg.Children[i] = c.Build()
	}
	if len(cfg.Children) == 0 {
		cfg.Children = nil
	}
	return cfg
}
