package domain

// BranchDiff classifies the routes touched by moving from one state to another.
type BranchDiff struct {
	// Leaving holds routes only in the previous branch, leaf first.
	Leaving Branch
	// Changing holds routes in both branches whose own params differ, root first.
	Changing Branch
	// Entering holds routes only in the next branch, root first.
	Entering Branch
}

// Diff computes the BranchDiff between prev and next. A nil prev means
// every route of next is entering.
func Diff(prev, next *RouterState) BranchDiff {
	var d BranchDiff
	var prevBranch Branch
	if prev != nil {
		prevBranch = prev.Branch
	}

	for i := len(prevBranch) - 1; i >= 0; i-- {
		if !next.Branch.Contains(prevBranch[i]) {
			d.Leaving = append(d.Leaving, prevBranch[i])
		}
	}

	for _, n := range next.Branch {
		if !prevBranch.Contains(n) {
			d.Entering = append(d.Entering, n)
			continue
		}
		if !sameParams(prev.RouteParams(n), next.RouteParams(n)) {
			d.Changing = append(d.Changing, n)
		}
	}
	return d
}

// Empty reports whether no route is affected.
func (d BranchDiff) Empty() bool {
	return len(d.Leaving) == 0 && len(d.Changing) == 0 && len(d.Entering) == 0
}

func sameParams(a, b Params) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
