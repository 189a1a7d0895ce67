// Package modules holds the detection modules: pluggable observers that
// register hooks on an Engine and, once a hazardous state is proven
// reachable by the solver, record an Issue. None of them import laser's
// run loop or CFG internals -- only the Hook/Module registration surface
// -- so the engine never has to know a module exists beyond its
// registered hooks.
package modules

import "github.com/laserevm/laserevm/analysis"

// Base gives a concrete module shared issue-accumulation plumbing.
type Base struct {
	issues []analysis.Issue
}

func (b *Base) report(i analysis.Issue) {
	b.issues = append(b.issues, i)
}

// Issues returns every issue recorded so far, in discovery order.
func (b *Base) Issues() []analysis.Issue {
	return b.issues
}
