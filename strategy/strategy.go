// Package strategy selects the order in which the engine visits pending
// global states.
package strategy

import "github.com/laserevm/laserevm/state"

// Strategy is any work-list discipline. Next returns the next state to
// execute, or ok=false once the list is exhausted. Implementations must
// never return the same state twice and must silently drop states whose
// machine depth exceeds maxDepth rather than returning them.
type Strategy interface {
	Add(s *state.GlobalState)
	Next() (s *state.GlobalState, ok bool)
	Len() int
}

// DepthFirst is the default strategy: pop from the tail of the work
// list, so a newly produced successor is explored before its siblings
// (a depth-first search of the execution tree).
type DepthFirst struct {
	work     []*state.GlobalState
	maxDepth int
}

// NewDepthFirst returns a depth-first strategy bounded by maxDepth
// instructions per path. maxDepth <= 0 means unbounded.
func NewDepthFirst(maxDepth int) *DepthFirst {
	return &DepthFirst{maxDepth: maxDepth}
}

func (d *DepthFirst) Add(s *state.GlobalState) {
	if d.maxDepth > 0 && s.Mstate.Depth > d.maxDepth {
		return
	}
	d.work = append(d.work, s)
}

func (d *DepthFirst) Next() (*state.GlobalState, bool) {
	if len(d.work) == 0 {
		return nil, false
	}
	last := len(d.work) - 1
	s := d.work[last]
	d.work = d.work[:last]
	return s, true
}

func (d *DepthFirst) Len() int { return len(d.work) }

// BreadthFirst pops from the head of the work list instead of the tail,
// exploring the execution tree level by level. It satisfies the same
// Strategy contract as DepthFirst.
type BreadthFirst struct {
	work     []*state.GlobalState
	maxDepth int
}

// NewBreadthFirst returns a breadth-first strategy bounded by maxDepth.
func NewBreadthFirst(maxDepth int) *BreadthFirst {
	return &BreadthFirst{maxDepth: maxDepth}
}

func (b *BreadthFirst) Add(s *state.GlobalState) {
	if b.maxDepth > 0 && s.Mstate.Depth > b.maxDepth {
		return
	}
	b.work = append(b.work, s)
}

func (b *BreadthFirst) Next() (*state.GlobalState, bool) {
	if len(b.work) == 0 {
		return nil, false
	}
	s := b.work[0]
	b.work = b.work[1:]
	return s, true
}

func (b *BreadthFirst) Len() int { return len(b.work) }
