package domain

import "strings"

// SegmentKind classifies one segment of a route pattern.
type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentParam
	SegmentSplat
)

// DefaultSplatName is the param an unnamed splat binds.
const DefaultSplatName = "splat"

// Segment is one compiled piece of a route pattern.
// Value holds the literal text or the param name.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// String renders the segment back into pattern syntax.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentParam:
		return ":" + s.Value
	case SegmentSplat:
		if s.Value == DefaultSplatName {
			return "*"
		}
		return "*" + s.Value
	default:
		return s.Value
	}
}

// SplitPath breaks a path into its non-empty segments.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParsePattern compiles a route pattern such as "users/:id/*rest".
// An empty pattern yields no segments (an index route).
func ParsePattern(pattern string) ([]Segment, error) {
	parts := SplitPath(pattern)
	segments := make([]Segment, 0, len(parts))
	for i, part := range parts {
		switch part[0] {
		case ':':
			name := part[1:]
			if name == "" {
				return nil, &ConfigError{Path: pattern, Reason: "empty param name"}
			}
			segments = append(segments, Segment{Kind: SegmentParam, Value: name})
		case '*':
			if i != len(parts)-1 {
				return nil, &ConfigError{Path: pattern, Reason: "splat must be the last segment"}
			}
			name := part[1:]
			if name == "" {
				name = DefaultSplatName
			}
			segments = append(segments, Segment{Kind: SegmentSplat, Value: name})
		default:
			segments = append(segments, Segment{Kind: SegmentLiteral, Value: part})
		}
	}
	return segments, nil
}

// Signature renders segments with params and splats as positional wildcards.
// Two patterns with the same signature cannot be told apart by the matcher.
func Signature(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		switch s.Kind {
		case SegmentParam:
			parts[i] = ":"
		case SegmentSplat:
			parts[i] = "*"
		default:
			parts[i] = s.Value
		}
	}
	return "/" + strings.Join(parts, "/")
}
