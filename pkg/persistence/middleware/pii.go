package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Mask replaces every masked value.
const Mask = "***"

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks route params and query
// values whose key matches one of the patterns before they are stored.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, snap *domain.StateSnapshot) error {
	// Work on a copy: the caller keeps using snap.
	cloned := *snap
	cloned.Params = snap.Params.Clone()
	for k := range cloned.Params {
		if m.sensitive(k) {
			cloned.Params[k] = Mask
		}
	}

	if loc := snap.Location; loc != nil {
		query := loc.Query.Clone()
		masked := false
		for k, vs := range query {
			if !m.sensitive(k) {
				continue
			}
			for i := range vs {
				vs[i] = Mask
			}
			masked = true
		}
		if masked {
			cloned.Location = loc.WithQuery(query)
		}
	}

	return m.next.Save(ctx, sessionID, &cloned)
}

func (m *piiMiddleware) sensitive(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.StateSnapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
