package domain

// RouteNode is a declarative route. Nodes are immutable once the tree is
// normalized and hold no parent pointers.
type RouteNode struct {
	ID       string
	Path     string
	Children []*RouteNode

	Artifact  *ArtifactRef
	Artifacts map[string]*ArtifactRef

	OnEnter  HookFunc
	OnChange HookFunc
	OnLeave  HookFunc

	// Terminal stops descent once the node's own pattern consumed the whole path.
	Terminal bool
	Meta     map[string]any

	segments []Segment
	compiled bool
}

// Compile parses and caches the node's pattern segments.
func (n *RouteNode) Compile() error {
	segs, err := ParsePattern(n.Path)
	if err != nil {
		return err
	}
	n.segments = segs
	n.compiled = true
	return nil
}

// Segments returns the compiled pattern. Uncompiled nodes are parsed on the fly.
func (n *RouteNode) Segments() []Segment {
	if n.compiled {
		return n.segments
	}
	segs, _ := ParsePattern(n.Path)
	return segs
}

// IsIndex reports whether the node contributes no path (an index route).
func (n *RouteNode) IsIndex() bool {
	return n.Path == ""
}

// HasSplat reports whether the pattern ends in a splat.
func (n *RouteNode) HasSplat() bool {
	segs := n.Segments()
	return len(segs) > 0 && segs[len(segs)-1].Kind == SegmentSplat
}

// ParamNames lists the params bound by this node's own pattern.
func (n *RouteNode) ParamNames() []string {
	var names []string
	for _, s := range n.Segments() {
		if s.Kind != SegmentLiteral {
			names = append(names, s.Value)
		}
	}
	return names
}

// RouteTree is a normalized, read-only forest of routes.
// It is safe to share across goroutines.
type RouteTree struct {
	Routes []*RouteNode
	index  map[string]*RouteNode
	size   int
}

// NewRouteTree indexes routes by ID.
func NewRouteTree(routes []*RouteNode) *RouteTree {
	t := &RouteTree{Routes: routes, index: make(map[string]*RouteNode)}
	t.Walk(func(n *RouteNode, _ int) bool {
		t.index[n.ID] = n
		t.size++
		return true
	})
	return t
}

// Walk visits nodes depth-first in declaration order.
// Returning false from fn skips the node's children.
func (t *RouteTree) Walk(fn func(n *RouteNode, depth int) bool) {
	var visit func(nodes []*RouteNode, depth int)
	visit = func(nodes []*RouteNode, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(t.Routes, 0)
}

// Find looks up a route by ID.
func (t *RouteTree) Find(id string) (*RouteNode, bool) {
	n, ok := t.index[id]
	return n, ok
}

// Len returns the number of routes in the tree.
func (t *RouteTree) Len() int {
	return t.size
}

// Branch is the root-to-leaf chain of routes selected by a match.
type Branch []*RouteNode

// Paths returns the patterns of the branch, root first.
func (b Branch) Paths() []string {
	out := make([]string, len(b))
	for i, n := range b {
		out[i] = n.Path
	}
	return out
}

// IDs returns the route IDs of the branch, root first.
func (b Branch) IDs() []string {
	out := make([]string, len(b))
	for i, n := range b {
		out[i] = n.ID
	}
	return out
}

// Contains reports whether n is part of the branch.
func (b Branch) Contains(n *RouteNode) bool {
	for _, r := range b {
		if r == n {
			return true
		}
	}
	return false
}

// Leaf returns the deepest route, or nil for an empty branch.
func (b Branch) Leaf() *RouteNode {
	if len(b) == 0 {
		return nil
	}
	return b[len(b)-1]
}

// Params maps param names to the decoded segment values they bound.
type Params map[string]string

// Clone returns a copy of the params.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Match is the successful result of matching a pathname against a tree.
type Match struct {
	Branch Branch
	Params Params
}
