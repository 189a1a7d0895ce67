package vm

import (
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

// jumpTarget resolves a stack value to a concrete, in-bounds JUMPDEST.
// Symbolic jump targets are not supported: a contract that computes its
// jump destination at runtime (common only in hand-written assembly and
// some obfuscated bytecode) abandons the path here rather than asking
// the solver to enumerate every possible target.
func jumpTarget(gs *state.GlobalState, dest *smt.BitVec) (int, error) {
	v, ok := dest.Value()
	if !ok || !v.IsInt64() {
		return 0, ErrInvalidJump
	}
	target := int(v.Int64())
	code := gs.Environment.Active.Disasm
	if code == nil || !code.IsValidJumpdest(target) {
		return 0, ErrInvalidJump
	}
	return target, nil
}

func (e *Evaluator) installControlOps() {
	e.register(disasm.JUMP, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		dest, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		target, err := jumpTarget(next, dest)
		if err != nil {
			return nil, err
		}
		next.Mstate.PC = target
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.JUMPI, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		dest, err := gs.Mstate.Stack.Peek()
		if err != nil {
			return nil, err
		}
		cond, err := gs.Mstate.Stack.Back(1)
		if err != nil {
			return nil, err
		}

		var successors []*state.GlobalState

		if v, ok := cond.Value(); ok {
			// Concrete condition: pre-prune the infeasible branch entirely.
			if v.Sign() != 0 {
				taken := gs.Copy()
				taken.Mstate.Stack.Pop()
				taken.Mstate.Stack.Pop()
				target, err := jumpTarget(taken, dest)
				if err != nil {
					return nil, err
				}
				taken.Mstate.PC = target
				taken.Mstate.Depth++
				successors = append(successors, taken)
			} else {
				notTaken := gs.Copy()
				notTaken.Mstate.Stack.Pop()
				notTaken.Mstate.Stack.Pop()
				notTaken.Mstate.PC += 1
				notTaken.Mstate.Depth++
				successors = append(successors, notTaken)
			}
			return Continue{States: successors}, nil
		}

		zero := smt.BitVecVal(0, 256)
		takenCond := cond.Ne(zero)
		notTakenCond := cond.Eq(zero)

		if target, err := jumpTarget(gs, dest); err == nil {
			taken := gs.Copy()
			taken.Mstate.Stack.Pop()
			taken.Mstate.Stack.Pop()
			taken.Mstate.PC = target
			taken.Mstate.Depth++
			taken.Mstate.AddConstraint(takenCond)
			successors = append(successors, taken)
		}

		notTaken := gs.Copy()
		notTaken.Mstate.Stack.Pop()
		notTaken.Mstate.Stack.Pop()
		notTaken.Mstate.PC += 1
		notTaken.Mstate.Depth++
		notTaken.Mstate.AddConstraint(notTakenCond)
		successors = append(successors, notTaken)

		return Continue{States: successors}, nil
	})

	e.register(disasm.PC, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		if err := next.Mstate.Stack.Push(smt.BitVecVal(int64(next.Mstate.PC), 256)); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.JUMPDEST, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.GAS, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		if err := next.Mstate.Stack.Push(smt.BitVecSym("gas", 256)); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})
}
