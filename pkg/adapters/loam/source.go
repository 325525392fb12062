package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/loam"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Source adapts a Loam repository to the ports.ArtifactSource interface.
// Artifact names are document IDs without their file extension.
type Source struct {
	Repo *loam.TypedRepository[ArtifactMetadata]

	mu    sync.Mutex
	index map[string]string
}

// New creates a new Loam artifact source.
func New(repo *loam.TypedRepository[ArtifactMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initializes a read-only, strict Loam repository at path.
func Open(path string) (*Source, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across JSON, YAML and frontmatter.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ArtifactMetadata](repo)), nil
}

// Resolve loads the document named name.
func (s *Source) Resolve(ctx context.Context, name string) (any, error) {
	known, err := s.has(ctx, name)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	}

	doc, err := s.Repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
	}

	id := doc.Data.ID
	if id == "" {
		id = trimExtension(doc.ID)
	}
	return &Document{
		ID:    id,
		Title: doc.Data.Title,
		Kind:  doc.Data.Kind,
		Meta:  doc.Data.Meta,
		Body:  strings.TrimSpace(doc.Content),
	}, nil
}

// List returns every artifact name in the repository.
func (s *Source) List(ctx context.Context) ([]string, error) {
	index, err := s.reindex(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	return names, nil
}

// has checks the cached index, refreshing it once on a miss.
func (s *Source) has(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	_, ok := s.index[name]
	s.mu.Unlock()
	if ok {
		return true, nil
	}

	index, err := s.reindex(ctx)
	if err != nil {
		return false, err
	}
	_, ok = index[name]
	return ok, nil
}

func (s *Source) reindex(ctx context.Context) (map[string]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	index := make(map[string]string, len(docs))
	for _, doc := range docs {
		name := trimExtension(doc.ID)
		if existing, ok := index[name]; ok {
			return nil, fmt.Errorf("collision detected: artifact '%s' is defined in both '%s' and '%s'", name, existing, doc.ID)
		}
		index[name] = doc.ID
	}

	s.mu.Lock()
	s.index = index
	s.mu.Unlock()
	return index, nil
}

// Watch implements ports.Watchable. Every change drops the cached index.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				s.mu.Lock()
				s.index = nil
				s.mu.Unlock()

				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	if ext := filepath.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	return filepath.ToSlash(id)
}
