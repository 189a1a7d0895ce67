package vm

import (
	"math/big"

	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

func (e *Evaluator) installStackOps() {
	e.register(disasm.POP, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		if _, err := next.Mstate.Stack.Pop(); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	for i := disasm.PUSH1; i <= disasm.PUSH32; i++ {
		op := i
		e.register(op, pushHandler(op))
	}
	e.register(disasm.PUSH0, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		if err := next.Mstate.Stack.Push(smt.BitVecVal(0, 256)); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	for i := disasm.DUP1; i <= disasm.DUP16; i++ {
		n := int(i-disasm.DUP1) + 1
		e.register(i, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
			next := gs.Copy()
			if err := next.Mstate.Stack.Dup(n); err != nil {
				return nil, err
			}
			next.Mstate.PC++
			next.Mstate.Depth++
			return Continue{States: []*state.GlobalState{next}}, nil
		})
	}

	for i := disasm.SWAP1; i <= disasm.SWAP16; i++ {
		n := int(i-disasm.SWAP1) + 1
		e.register(i, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
			next := gs.Copy()
			if err := next.Mstate.Stack.Swap(n); err != nil {
				return nil, err
			}
			next.Mstate.PC++
			next.Mstate.Depth++
			return Continue{States: []*state.GlobalState{next}}, nil
		})
	}
}

// pushHandler returns the handler for a specific PUSH1..PUSH32 opcode:
// read its immediate data from the code, zero-extend to 256 bits, push,
// and advance the PC past the opcode and its immediate data.
func pushHandler(op disasm.OpCode) executionFunc {
	size := op.PushSize()
	return func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		code := next.Environment.Active.Code
		start := next.Mstate.PC + 1
		end := start + size
		if end > len(code) {
			end = len(code)
		}
		var raw []byte
		if start < len(code) {
			raw = code[start:end]
		}
		padded := make([]byte, size)
		copy(padded[size-len(raw):], raw)
		value := new(big.Int).SetBytes(padded)
		if err := next.Mstate.Stack.Push(smt.BitVecValFromBig(value, 256)); err != nil {
			return nil, err
		}
		next.Mstate.PC += 1 + size
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	}
}
