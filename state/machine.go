package state

import "github.com/laserevm/laserevm/smt"

// MachineState is the per-transaction interpreter state: program
// counter, stack, memory, the accumulated path constraints on this
// path, and coarse gas bookkeeping.
type MachineState struct {
	PC      int
	Stack   *Stack
	Memory  *Memory
	Constraints []*smt.Bool

	MinGasUsed uint64
	MaxGasUsed uint64

	// Depth is the number of instructions executed on this path so far;
	// the strategy compares it against max_depth.
	Depth int
}

// NewMachineState returns a fresh machine state with an empty stack and
// memory and no constraints.
func NewMachineState() *MachineState {
	return &MachineState{Stack: NewStack(), Memory: NewMemory()}
}

// Copy returns a MachineState sharing no mutable structure with the
// receiver -- an evaluator producing N successors calls this N times.
func (m *MachineState) Copy() *MachineState {
	cp := *m
	cp.Stack = m.Stack.Copy()
	cp.Memory = m.Memory.Copy()
	cp.Constraints = append([]*smt.Bool(nil), m.Constraints...)
	return &cp
}

// AddConstraint appends a path constraint to this state's Constraints.
// A sibling successor never observes it, because Copy gives every
// MachineState its own Constraints slice.
func (m *MachineState) AddConstraint(c *smt.Bool) {
	m.Constraints = append(m.Constraints, c)
}
