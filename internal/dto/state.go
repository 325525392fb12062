package dto

import (
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/session"
)

// State is the wire form of a committed RouterState.
// Routes are referenced by ID.
type State struct {
	Location  *domain.Location      `json:"location"`
	Routes    []string              `json:"routes"`
	Params    domain.Params         `json:"params"`
	Artifacts []*domain.ArtifactSet `json:"artifacts,omitempty"`
}

// FromState converts a state. A nil state stays nil.
func FromState(s *domain.RouterState) *State {
	if s == nil {
		return nil
	}
	params := s.Params
	if params == nil {
		params = domain.Params{}
	}
	return &State{
		Location:  s.Location,
		Routes:    s.Branch.IDs(),
		Params:    params,
		Artifacts: s.Artifacts,
	}
}

// Diff is the wire form of a BranchDiff, broadcast to session subscribers.
type Diff struct {
	Location *domain.Location `json:"location,omitempty"`
	Leaving  []string         `json:"leaving,omitempty"`
	Changing []string         `json:"changing,omitempty"`
	Entering []string         `json:"entering,omitempty"`
}

// FromDiff converts d. It returns nil when no route is affected.
func FromDiff(d domain.BranchDiff, loc *domain.Location) *Diff {
	if d.Empty() {
		return nil
	}
	return &Diff{
		Location: loc,
		Leaving:  d.Leaving.IDs(),
		Changing: d.Changing.IDs(),
		Entering: d.Entering.IDs(),
	}
}

// Resolution describes how resolving a location ended. Exactly one of
// State, Redirect or Aborted is set.
type Resolution struct {
	State     *State           `json:"state,omitempty"`
	Redirect  *domain.Location `json:"redirect,omitempty"`
	Redirects []string         `json:"redirects,omitempty"`
	Aborted   bool             `json:"aborted,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	Diff      *Diff            `json:"diff,omitempty"`
}

// FromTransition builds a resolution from the outcome of one transition.
func FromTransition(state *domain.RouterState, t *domain.Transition) *Resolution {
	res := &Resolution{State: FromState(state)}
	if t == nil {
		return res
	}
	if to := t.Redirect(); to != nil {
		res.Redirect = to
		return res
	}
	if t.Cancelled() {
		res.Aborted = true
		res.Reason = Reason(t.AbortReason())
	}
	return res
}

// FromResult builds a resolution from a session navigation.
func FromResult(res *session.Result) *Resolution {
	out := &Resolution{
		State:     FromState(res.State),
		Redirects: res.Redirects,
		Aborted:   res.Aborted,
		Reason:    Reason(res.Reason),
	}
	if res.State != nil {
		out.Diff = FromDiff(res.Diff, res.State.Location)
	}
	return out
}

// Reason renders an abort reason as text.
func Reason(reason any) string {
	switch r := reason.(type) {
	case nil:
		return ""
	case string:
		return r
	case error:
		return r.Error()
	default:
		return fmt.Sprint(r)
	}
}
