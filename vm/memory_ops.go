package vm

import (
	"github.com/laserevm/laserevm/disasm"
	evmcrypto "github.com/laserevm/laserevm/internal/evmcrypto"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

// concreteOffset resolves an offset BitVec to an int, abandoning the
// path (ErrOutOfBoundsOffset) if it's symbolic or implausibly large --
// memory offsets are not something the native solver is asked to pin
// down on the fly.
func concreteOffset(v *smt.BitVec) (int, error) {
	val, ok := v.Value()
	if !ok || !val.IsInt64() || val.Int64() < 0 || val.Int64() > 1<<24 {
		return 0, ErrOutOfBoundsOffset
	}
	return int(val.Int64()), nil
}

func (e *Evaluator) installMemoryOps() {
	e.register(disasm.MLOAD, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		offsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		offset, err := concreteOffset(offsetBV)
		if err != nil {
			return nil, err
		}
		word := next.Mstate.Memory.Get(offset, 32)
		if err := next.Mstate.Stack.Push(word); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.MSTORE, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		offsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		value, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		offset, err := concreteOffset(offsetBV)
		if err != nil {
			return nil, err
		}
		next.Mstate.Memory.Set32(offset, value)
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.MSTORE8, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		offsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		value, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		offset, err := concreteOffset(offsetBV)
		if err != nil {
			return nil, err
		}
		next.Mstate.Memory.SetByte(offset, smt.Extract(7, 0, value))
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.MSIZE, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		if err := next.Mstate.Stack.Push(smt.BitVecVal(int64(next.Mstate.Memory.Len()), 256)); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.KECCAK256, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		offsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		sizeBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		offset, err := concreteOffset(offsetBV)
		if err != nil {
			return nil, err
		}
		size, err := concreteOffset(sizeBV)
		if err != nil {
			return nil, err
		}
		data := next.Mstate.Memory.GetBytes(offset, size)
		hash := evmcrypto.Keccak256(data)
		value := smt.BitVecValFromBig(bytesToBig(hash), 256)
		if err := next.Mstate.Stack.Push(value); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})
}
