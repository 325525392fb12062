package domain

import (
	"fmt"
	"time"
)

// RouterState is the committed result of a transition.
// Artifacts is aligned index-for-index with Branch.
type RouterState struct {
	Location  *Location
	Branch    Branch
	Params    Params
	Artifacts []*ArtifactSet
}

// RouteParams returns the subset of params bound by n's own pattern.
func (s *RouterState) RouteParams(n *RouteNode) Params {
	out := Params{}
	if s == nil {
		return out
	}
	for _, name := range n.ParamNames() {
		if v, ok := s.Params[name]; ok {
			out[name] = v
		}
	}
	return out
}

// ArtifactFor returns the artifacts loaded for n, or nil.
func (s *RouterState) ArtifactFor(n *RouteNode) *ArtifactSet {
	if s == nil {
		return nil
	}
	for i, r := range s.Branch {
		if r == n && i < len(s.Artifacts) {
			return s.Artifacts[i]
		}
	}
	return nil
}

// Snapshot captures the serializable part of the state.
func (s *RouterState) Snapshot() *StateSnapshot {
	snap := &StateSnapshot{
		Routes:    s.Branch.IDs(),
		Params:    s.Params.Clone(),
		UpdatedAt: time.Now(),
	}
	if s.Location != nil {
		snap.Location = s.Location.clone()
	}
	return snap
}

// StateSnapshot is the persisted form of a RouterState.
// Routes are referenced by ID and artifacts are not kept.
type StateSnapshot struct {
	Location  *Location `json:"location"`
	Routes    []string  `json:"routes"`
	Params    Params    `json:"params,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed holds the encrypted form of a snapshot written through an
	// encrypting store. The other fields are then left empty.
	Sealed string `json:"sealed,omitempty"`
}

// Hydrate rebuilds a RouterState against tree. Artifacts are left empty
// so the next transition loads them again.
func (s *StateSnapshot) Hydrate(tree *RouteTree) (*RouterState, error) {
	branch := make(Branch, 0, len(s.Routes))
	for _, id := range s.Routes {
		n, ok := tree.Find(id)
		if !ok {
			return nil, fmt.Errorf("hydrate route %q: %w", id, ErrRouteNotFound)
		}
		branch = append(branch, n)
	}
	params := s.Params.Clone()
	if params == nil {
		params = Params{}
	}
	return &RouterState{
		Location: s.Location,
		Branch:   branch,
		Params:   params,
	}, nil
}
