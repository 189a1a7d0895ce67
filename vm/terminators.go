package vm

import (
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/state"
)

func (e *Evaluator) installTerminators() {
	e.register(disasm.STOP, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		next.Halted = true
		return EndTransaction{State: next}, nil
	})

	e.register(disasm.RETURN, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
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
		next.Halted = true
		next.LastReturnData = data
		return EndTransaction{State: next, ReturnData: data}, nil
	})

	e.register(disasm.REVERT, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
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
		next.Halted = true
		next.Reverted = true
		next.LastReturnData = data
		return EndTransaction{State: next, ReturnData: data, Reverted: true}, nil
	})

	e.register(disasm.INVALID, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		next.Halted = true
		next.Reverted = true
		return EndTransaction{State: next, Reverted: true}, nil
	})

	e.register(disasm.SELFDESTRUCT, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		if gs.Environment.Static {
			return nil, ErrStaticWrite
		}
		next := gs.Copy()
		beneficiaryBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		if beneficiary, ok := addressFromBitVec(beneficiaryBV); ok {
			if acct := next.World.Get(beneficiary); acct != nil {
				moved := acct.Copy()
				moved.Balance = moved.Balance.Add(next.Environment.Active.Balance)
				next.World.Put(moved)
			}
		}
		next.Environment.Active.Deleted = true
		next.Environment.Active.Balance = next.Environment.Active.Balance.Sub(next.Environment.Active.Balance)
		next.Halted = true
		return EndTransaction{State: next}, nil
	})
}
