package state

import "github.com/laserevm/laserevm/smt"

// GlobalState is the engine's unit of work: a world, an environment, a
// machine state, the stack of transactions active on this path, the uid
// of the CFG node this state currently belongs to, and the return data
// of the most recently completed sub-call (visible to RETURNDATASIZE/
// RETURNDATACOPY and to a CALL's post-hook).
//
// A GlobalState is never mutated after it is handed to anything other
// than its own creator: the evaluator that wants to change it produces
// a Copy and mutates that instead, so two successors of the same
// predecessor never alias shared structure.
type GlobalState struct {
	World       *WorldState
	Environment *Environment
	Mstate      *MachineState
	TxStack     []TxStackEntry

	NodeUID int

	LastReturnData []byte
	Halted         bool
	Reverted       bool

	// Annotations carries path-scoped facts a detection module's pre/post
	// hook recorded on some earlier instruction and wants to find again
	// later on the same path (e.g. "an external call with unresolved
	// target happened here"), as opposed to smt.Annotation values
	// attached to a single Expression. Hooks append via Annotate, which
	// copies rather than mutates the slice in place, keeping the same
	// no-aliasing discipline as the rest of GlobalState.
	Annotations []smt.Annotation
}

// NewGlobalState constructs a GlobalState from its three core pieces.
// TxStack starts empty; the caller appends the owning transaction itself.
func NewGlobalState(world *WorldState, env *Environment, mstate *MachineState) *GlobalState {
	return &GlobalState{World: world, Environment: env, Mstate: mstate}
}

// Copy returns a GlobalState with independently mutable World,
// Environment, and Mstate, sharing the (logically immutable once pushed)
// transaction stack and node uid.
func (g *GlobalState) Copy() *GlobalState {
	return &GlobalState{
		World:          g.World.Copy(),
		Environment:    g.Environment.Copy(),
		Mstate:         g.Mstate.Copy(),
		TxStack:        append([]TxStackEntry(nil), g.TxStack...),
		NodeUID:        g.NodeUID,
		LastReturnData: g.LastReturnData,
		Halted:         g.Halted,
		Reverted:       g.Reverted,
		Annotations:    g.Annotations,
	}
}

// Annotate appends an annotation, copying the backing slice so that a
// sibling successor produced from the same predecessor never observes it.
func (g *GlobalState) Annotate(a smt.Annotation) {
	g.Annotations = append(append([]smt.Annotation(nil), g.Annotations...), a)
}

// FindAnnotation returns the most recently added annotation for which
// match returns true, or nil if none matches.
func (g *GlobalState) FindAnnotation(match func(smt.Annotation) bool) smt.Annotation {
	for i := len(g.Annotations) - 1; i >= 0; i-- {
		if match(g.Annotations[i]) {
			return g.Annotations[i]
		}
	}
	return nil
}

// CurrentTransaction returns the transaction this state is executing
// within, or nil if the stack is empty (should not happen once the
// engine has started a phase).
func (g *GlobalState) CurrentTransaction() Transaction {
	if len(g.TxStack) == 0 {
		return nil
	}
	return g.TxStack[len(g.TxStack)-1].Transaction
}
