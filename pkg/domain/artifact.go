package domain

import "context"

// ArtifactRef is an opaque payload a route contributes to a transition.
// Exactly one of Value, Resolve or Name is expected to be set:
// Value is available immediately, Resolve defers loading until the route
// is matched, and Name is looked up through an artifact source.
type ArtifactRef struct {
	Value   any
	Resolve func(ctx context.Context, state *RouterState) (any, error)
	Name    string
}

// Artifact wraps an immediately available value.
func Artifact(v any) *ArtifactRef { return &ArtifactRef{Value: v} }

// LazyArtifact wraps a deferred loader.
func LazyArtifact(fn func(ctx context.Context, state *RouterState) (any, error)) *ArtifactRef {
	return &ArtifactRef{Resolve: fn}
}

// NamedArtifact references an artifact by name.
func NamedArtifact(name string) *ArtifactRef { return &ArtifactRef{Name: name} }

// ArtifactSet holds the loaded artifacts of one route: a single value,
// a keyed mapping, or both. A nil *ArtifactSet means the route contributes
// nothing and consumers reuse the deeper result.
type ArtifactSet struct {
	Single any            `json:"single,omitempty"`
	Named  map[string]any `json:"named,omitempty"`
}

// Get returns the keyed artifact, or Single when key is empty.
func (s *ArtifactSet) Get(key string) any {
	if s == nil {
		return nil
	}
	if key == "" {
		return s.Single
	}
	return s.Named[key]
}
