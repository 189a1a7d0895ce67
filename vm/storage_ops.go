package vm

import (
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

func (e *Evaluator) installStorageOps() {
	e.register(disasm.SLOAD, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		key, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}

		value := next.Environment.Active.Storage.Load(key)
		if e.Loader != nil && e.OnchainAccess {
			if kv, ok := key.Value(); ok && kv.IsUint64() {
				if fetched, found := e.Loader.FetchStorage(next.Environment.Active.Address.Hex(), kv.Uint64()); found {
					value = smt.BitVecVal(int64(fetched), 256)
					next.Environment.Active.Storage.Store(key, value)
				}
			}
		}
		if err := next.Mstate.Stack.Push(value); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.SSTORE, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		if gs.Environment.Static {
			return nil, ErrStaticWrite
		}
		next := gs.Copy()
		key, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		value, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		next.Environment.Active.Storage.Store(key, value)
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})
}
