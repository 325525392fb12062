package dsl

import (
	"fmt"

	"github.com/aretw0/wayfinder/internal/compiler"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Builder manages the route tree construction.
type Builder struct {
	roots []*RouteBuilder
	hooks ports.HookResolver
}

// New creates a new route tree builder.
func New() *Builder {
	return &Builder{}
}

// WithHooks resolves hooks referenced by name (see RouteBuilder.OnEnterNamed).
func (b *Builder) WithHooks(hooks ports.HookResolver) *Builder {
	b.hooks = hooks
	return b
}

// Route adds a top-level route.
func (b *Builder) Route(path string) *RouteBuilder {
	rb := &RouteBuilder{config: domain.RouteConfig{Path: path}}
	b.roots = append(b.roots, rb)
	return rb
}

// Configs returns the declarative form of the routes built so far.
func (b *Builder) Configs() []domain.RouteConfig {
	out := make([]domain.RouteConfig, len(b.roots))
	for i, rb := range b.roots {
		out[i] = rb.Build()
	}
	return out
}

// Build compiles the routes into a normalized tree.
func (b *Builder) Build() (*domain.RouteTree, error) {
	tree, err := compiler.Normalize(b.Configs(), b.hooks)
	if err != nil {
		return nil, fmt.Errorf("failed to build route tree: %w", err)
	}
	return tree, nil
}
