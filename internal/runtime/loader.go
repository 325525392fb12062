package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// ArtifactLoader resolves the artifacts of a matched branch concurrently.
type ArtifactLoader struct {
	source ports.ArtifactSource
	logger *slog.Logger
}

// NewArtifactLoader creates a loader. Named artifacts need WithArtifactSource.
func NewArtifactLoader(opts ...Option) *ArtifactLoader {
	c := newConfig(opts)
	return &ArtifactLoader{source: c.source, logger: c.logger}
}

// Load resolves every artifact of state.Branch. The result is aligned with
// the branch; routes without artifacts get a nil entry. Any failure discards
// the whole result and returns a *domain.ArtifactError.
func (l *ArtifactLoader) Load(ctx context.Context, state *domain.RouterState) ([]*domain.ArtifactSet, error) {
	results := make([]*domain.ArtifactSet, len(state.Branch))
	g, gctx := errgroup.WithContext(ctx)

	type keyed struct {
		keys   []string
		values []any
	}
	named := make([]keyed, len(state.Branch))

	for i, route := range state.Branch {
		if route.Artifact == nil && len(route.Artifacts) == 0 {
			continue
		}
		set := &domain.ArtifactSet{}
		results[i] = set

		if ref := route.Artifact; ref != nil {
			g.Go(func() error {
				v, err := l.resolve(gctx, ref, state)
				if err != nil {
					return &domain.ArtifactError{RouteID: route.ID, Err: err}
				}
				set.Single = v
				return nil
			})
		}

		if len(route.Artifacts) > 0 {
			keys := make([]string, 0, len(route.Artifacts))
			for k := range route.Artifacts {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			named[i] = keyed{keys: keys, values: make([]any, len(keys))}

			for j, key := range keys {
				ref := route.Artifacts[key]
				values := named[i].values
				g.Go(func() error {
					v, err := l.resolve(gctx, ref, state)
					if err != nil {
						return &domain.ArtifactError{RouteID: route.ID, Key: key, Err: err}
					}
					values[j] = v
					return nil
				})
			}
		}
	}

	if err := g.Wait(); err != nil {
		l.logger.DebugContext(ctx, "artifact load failed", "err", err)
		return nil, err
	}

	for i, kv := range named {
		if len(kv.keys) == 0 {
			continue
		}
		results[i].Named = make(map[string]any, len(kv.keys))
		for j, key := range kv.keys {
			results[i].Named[key] = kv.values[j]
		}
	}
	return results, nil
}

func (l *ArtifactLoader) resolve(ctx context.Context, ref *domain.ArtifactRef, state *domain.RouterState) (any, error) {
	switch {
	case ref == nil:
		return nil, nil
	case ref.Value != nil:
		return ref.Value, nil
	case ref.Resolve != nil:
		return ref.Resolve(ctx, state)
	case ref.Name != "":
		if l.source == nil {
			return nil, fmt.Errorf("no artifact source for %q: %w", ref.Name, domain.ErrArtifactNotFound)
		}
		return l.source.Resolve(ctx, ref.Name)
	default:
		return nil, nil
	}
}
