package matcher

import (
	"net/url"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

type binding struct {
	name  string
	value string
}

// Match resolves pathname against tree. ok is false when no route matches.
func Match(tree *domain.RouteTree, pathname string) (*domain.Match, bool) {
	if tree == nil {
		return nil, false
	}
	segments := decodeSegments(pathname)

	branch, binds, ok := matchNodes(tree.Routes, segments)
	if !ok {
		return nil, false
	}

	// Bindings are ordered root to leaf, so deeper routes win on collisions.
	params := make(domain.Params, len(binds))
	for _, b := range binds {
		params[b.name] = b.value
	}
	return &domain.Match{Branch: branch, Params: params}, true
}

func decodeSegments(pathname string) []string {
	raw := domain.SplitPath(pathname)
	out := make([]string, len(raw))
	for i, s := range raw {
		if dec, err := url.PathUnescape(s); err == nil {
			out[i] = dec
		} else {
			out[i] = s
		}
	}
	return out
}

func matchNodes(nodes []*domain.RouteNode, segments []string) (domain.Branch, []binding, bool) {
	for _, n := range nodes {
		if branch, binds, ok := matchNode(n, segments); ok {
			return branch, binds, true
		}
	}
	return nil, nil, false
}

func matchNode(n *domain.RouteNode, segments []string) (domain.Branch, []binding, bool) {
	if n.IsIndex() {
		if len(segments) == 0 {
			return domain.Branch{n}, nil, true
		}
		return nil, nil, false
	}

	rest, binds, ok := consume(n.Segments(), segments)
	if !ok {
		return nil, nil, false
	}

	if len(rest) == 0 {
		if !n.Terminal {
			if branch, childBinds, ok := matchNodes(n.Children, rest); ok {
				return append(domain.Branch{n}, branch...), append(binds, childBinds...), true
			}
		}
		return domain.Branch{n}, binds, true
	}

	if branch, childBinds, ok := matchNodes(n.Children, rest); ok {
		return append(domain.Branch{n}, branch...), append(binds, childBinds...), true
	}
	return nil, nil, false
}

// consume matches pattern against the head of segments and returns what is left.
func consume(pattern []domain.Segment, segments []string) ([]string, []binding, bool) {
	var binds []binding
	for i, seg := range pattern {
		if seg.Kind == domain.SegmentSplat {
			binds = append(binds, binding{seg.Value, strings.Join(segments[i:], "/")})
			return nil, binds, true
		}
		if i >= len(segments) {
			return nil, nil, false
		}
		switch seg.Kind {
		case domain.SegmentLiteral:
			if segments[i] != seg.Value {
				return nil, nil, false
			}
		case domain.SegmentParam:
			binds = append(binds, binding{seg.Value, segments[i]})
		}
	}
	return segments[len(pattern):], binds, true
}
