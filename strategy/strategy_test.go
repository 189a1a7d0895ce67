package strategy

import (
	"testing"

	"github.com/laserevm/laserevm/state"
)

func stateAtDepth(depth int) *state.GlobalState {
	gs := state.NewGlobalState(state.NewWorldState(), &state.Environment{}, state.NewMachineState())
	gs.Mstate.Depth = depth
	return gs
}

func TestDepthFirstOrder(t *testing.T) {
	d := NewDepthFirst(0)
	a, b, c := stateAtDepth(0), stateAtDepth(0), stateAtDepth(0)
	d.Add(a)
	d.Add(b)
	d.Add(c)

	if d.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", d.Len())
	}
	got, ok := d.Next()
	if !ok || got != c {
		t.Errorf("Next() = %v, want c (last added, LIFO)", got)
	}
}

func TestBreadthFirstOrder(t *testing.T) {
	b := NewBreadthFirst(0)
	a, c, e := stateAtDepth(0), stateAtDepth(0), stateAtDepth(0)
	b.Add(a)
	b.Add(c)
	b.Add(e)

	got, ok := b.Next()
	if !ok || got != a {
		t.Errorf("Next() = %v, want a (first added, FIFO)", got)
	}
}

func TestDepthFirstDropsOverMaxDepth(t *testing.T) {
	d := NewDepthFirst(10)
	d.Add(stateAtDepth(11))

	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (state over max depth silently dropped)", d.Len())
	}
}

func TestNextOnEmptyReturnsFalse(t *testing.T) {
	d := NewDepthFirst(0)
	if _, ok := d.Next(); ok {
		t.Error("Next() on empty strategy: ok = true, want false")
	}
}

func TestUnboundedMaxDepthAcceptsEverything(t *testing.T) {
	d := NewDepthFirst(0)
	d.Add(stateAtDepth(10_000))
	if d.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (maxDepth <= 0 means unbounded)", d.Len())
	}
}
