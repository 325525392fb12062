package graph

import (
	"sort"

	"github.com/aretw0/wayfinder/internal/matcher"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Entry is a flattened view of one route, in tree order.
type Entry struct {
	ID        string   `json:"id"`
	Path      string   `json:"path"`
	Pattern   string   `json:"pattern"`
	Depth     int      `json:"depth"`
	Parent    string   `json:"parent,omitempty"`
	Index     bool     `json:"index,omitempty"`
	Terminal  bool     `json:"terminal,omitempty"`
	Artifacts []string `json:"artifacts,omitempty"`
	Hooks     []string `json:"hooks,omitempty"`
}

// Entries flattens tree depth-first. Pattern is the absolute pattern of the
// route, i.e. the join of every pattern from the root down to it.
func Entries(tree *domain.RouteTree) []Entry {
	if tree == nil {
		return nil
	}
	var (
		out    []Entry
		chain  []string
		owners []string
	)
	tree.Walk(func(n *domain.RouteNode, depth int) bool {
		chain = append(chain[:depth], n.Path)
		owners = append(owners[:depth], n.ID)

		e := Entry{
			ID:        n.ID,
			Path:      n.Path,
			Pattern:   matcher.JoinPaths(chain...),
			Depth:     depth,
			Index:     n.IsIndex(),
			Terminal:  n.Terminal,
			Artifacts: artifactNames(n),
			Hooks:     hookPhases(n),
		}
		if depth > 0 {
			e.Parent = owners[depth-1]
		}
		out = append(out, e)
		return true
	})
	return out
}

func artifactNames(n *domain.RouteNode) []string {
	var names []string
	if n.Artifact != nil {
		names = append(names, refName("", n.Artifact))
	}
	keys := make([]string, 0, len(n.Artifacts))
	for k := range n.Artifacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		names = append(names, refName(k, n.Artifacts[k]))
	}
	return names
}

// refName describes a ref as "key=name". Inline values are shown as "(value)"
// and lazy loaders as "(lazy)".
func refName(key string, ref *domain.ArtifactRef) string {
	name := ref.Name
	switch {
	case name != "":
	case ref.Resolve != nil:
		name = "(lazy)"
	default:
		name = "(value)"
	}
	if key == "" {
		return name
	}
	return key + "=" + name
}

func hookPhases(n *domain.RouteNode) []string {
	var phases []string
	if n.OnEnter != nil {
		phases = append(phases, string(domain.PhaseEnter))
	}
	if n.OnChange != nil {
		phases = append(phases, string(domain.PhaseChange))
	}
	if n.OnLeave != nil {
		phases = append(phases, string(domain.PhaseLeave))
	}
	return phases
}
