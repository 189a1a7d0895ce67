package laser

import (
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
	"github.com/laserevm/laserevm/transaction"
	"github.com/laserevm/laserevm/vm"
)

// handleEndTransaction pops the ended state's own transaction-stack
// entry and either signals a top-level commit (returning nil, so runLoop
// flushes ended.World to OpenStates) or builds the resumed caller state:
// the new contract address or CALL success flag pushed, return data
// written into the caller's memory (or installed as runtime code for a
// creation), and OriginOp's post-hooks run before the resumed state goes
// back on the work list.
func (e *Engine) handleEndTransaction(s vm.EndTransaction) *state.GlobalState {
	ended := s.State
	if len(ended.TxStack) == 0 {
		return nil
	}
	entry := ended.TxStack[len(ended.TxStack)-1]

	endedWorld := ended.World
	endedWorld.Put(ended.Environment.Active)

	if entry.CallerState == nil {
		return nil
	}

	next := entry.CallerState.Copy()
	next.World = endedWorld
	if acct := endedWorld.Get(next.Environment.Active.Address); acct != nil {
		merged := acct.Copy()
		merged.Balance = next.Environment.Active.Balance
		next.Environment.Active = merged
	}

	if cc, ok := entry.Transaction.(*transaction.ContractCreation); ok {
		var pushVal *smt.BitVec
		if !ended.Reverted {
			updated := endedWorld.GetOrCreate(cc.NewAddress).Copy()
			updated.SetCode(s.ReturnData)
			endedWorld.Put(updated)
			pushVal = state.AddressToBitVec(cc.NewAddress)
			if next.Environment.Active.Address == cc.NewAddress {
				next.Environment.Active = updated
			}
		} else {
			pushVal = smt.BitVecVal(0, 256)
		}
		if err := next.Mstate.Stack.Push(pushVal); err != nil {
			return nil
		}
	} else {
		success := smt.BitVecVal(0, 256)
		if !ended.Reverted {
			success = smt.BitVecVal(1, 256)
		}
		if err := next.Mstate.Stack.Push(success); err != nil {
			return nil
		}
		next.LastReturnData = s.ReturnData
		writeReturnData(next, entry.RetOffset, entry.RetSize, s.ReturnData)
	}

	e.manageReturn(ended, next)
	e.runPostHooks(entry.OriginOp, next)
	return next
}

// writeReturnData copies min(len(data), retSize) bytes of a completed
// call's return data into the caller's memory at retOffset, matching the
// real EVM's behavior of leaving the remainder of an over-sized
// destination region untouched rather than zero-padding it.
func writeReturnData(gs *state.GlobalState, retOffset, retSize int, data []byte) {
	if retSize <= 0 {
		return
	}
	n := len(data)
	if n > retSize {
		n = retSize
	}
	for i := 0; i < n; i++ {
		gs.Mstate.Memory.SetByte(retOffset+i, smt.BitVecVal(int64(data[i]), 8))
	}
}
