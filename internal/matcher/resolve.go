package matcher

import (
	"net/url"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// JoinPaths joins route patterns into one absolute path.
func JoinPaths(paths ...string) string {
	var segments []string
	for _, p := range paths {
		segments = append(segments, domain.SplitPath(p)...)
	}
	return "/" + strings.Join(segments, "/")
}

// ResolvePath resolves to against the joined branchPaths under basename.
// Absolute targets are placed under basename; relative targets are walked
// like a filesystem path, with ".." clamped at the basename. A trailing
// slash on to is kept.
func ResolvePath(to string, branchPaths []string, basename string) string {
	base := normalizeBasename(basename)

	var segments []string
	if !strings.HasPrefix(to, "/") {
		segments = domain.SplitPath(JoinPaths(branchPaths...))
	}
	for _, part := range strings.Split(to, "/") {
		switch part {
		case "", ".":
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, part)
		}
	}

	trailing := len(to) > 1 && strings.HasSuffix(to, "/")

	out := base
	if len(segments) > 0 {
		out += "/" + strings.Join(segments, "/")
	}
	if trailing || out == "" {
		out += "/"
	}
	return out
}

// Interpolate fills the params of a route pattern with values from params.
// Segments whose param is missing are dropped.
func Interpolate(pattern string, params domain.Params) string {
	segs, err := domain.ParsePattern(pattern)
	if err != nil {
		return pattern
	}
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		switch s.Kind {
		case domain.SegmentLiteral:
			parts = append(parts, s.Value)
		case domain.SegmentParam:
			if v := params[s.Value]; v != "" {
				parts = append(parts, url.PathEscape(v))
			}
		case domain.SegmentSplat:
			for _, p := range domain.SplitPath(params[s.Value]) {
				parts = append(parts, url.PathEscape(p))
			}
		}
	}
	return strings.Join(parts, "/")
}

func normalizeBasename(basename string) string {
	segments := domain.SplitPath(basename)
	if len(segments) == 0 {
		return ""
	}
	return "/" + strings.Join(segments, "/")
}

// StripBasename removes basename from the front of pathname. It reports
// false when pathname lies outside basename.
func StripBasename(pathname, basename string) (string, bool) {
	base := normalizeBasename(basename)
	if base == "" {
		return pathname, true
	}
	if pathname == base {
		return "/", true
	}
	if !strings.HasPrefix(pathname, base+"/") {
		return "", false
	}
	return pathname[len(base):], true
}
