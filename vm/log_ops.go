package vm

import (
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/state"
)

// installLogOps wires LOG0..LOG4. Events aren't inspected by any
// detection module here, so the handler only needs to consume the right
// number of stack items (offset, size, then n topics) and advance -- the
// memory region itself is left untouched.
func (e *Evaluator) installLogOps() {
	for n := 0; n <= 4; n++ {
		topics := n
		op := disasm.LOG0 + disasm.OpCode(n)
		e.register(op, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
			if gs.Environment.Static {
				return nil, ErrStaticWrite
			}
			next := gs.Copy()
			if _, err := next.Mstate.Stack.Pop(); err != nil { // offset
				return nil, err
			}
			if _, err := next.Mstate.Stack.Pop(); err != nil { // size
				return nil, err
			}
			for i := 0; i < topics; i++ {
				if _, err := next.Mstate.Stack.Pop(); err != nil {
					return nil, err
				}
			}
			next.Mstate.PC++
			next.Mstate.Depth++
			return Continue{States: []*state.GlobalState{next}}, nil
		})
	}
}
