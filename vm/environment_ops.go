package vm

import (
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

// pushValue is the common shape for a zero-operand opcode that pushes a
// single derived value and advances the PC by one.
func pushValue(get func(gs *state.GlobalState) *smt.BitVec) executionFunc {
	return func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		if err := next.Mstate.Stack.Push(get(next)); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	}
}

func (e *Evaluator) installEnvironmentOps() {
	e.register(disasm.ADDRESS, pushValue(func(gs *state.GlobalState) *smt.BitVec {
		return state.AddressToBitVec(gs.Environment.Active.Address)
	}))
	e.register(disasm.BALANCE, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		addrBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		balance := smt.BitVecSym("balance_unknown", 256)
		if addr, ok := addressFromBitVec(addrBV); ok {
			if acct := next.World.Get(addr); acct != nil {
				balance = acct.Balance
			}
		}
		if err := next.Mstate.Stack.Push(balance); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})
	e.register(disasm.SELFBALANCE, pushValue(func(gs *state.GlobalState) *smt.BitVec {
		return gs.Environment.Active.Balance
	}))
	e.register(disasm.ORIGIN, pushValue(func(gs *state.GlobalState) *smt.BitVec { return gs.Environment.Origin }))
	e.register(disasm.CALLER, pushValue(func(gs *state.GlobalState) *smt.BitVec { return gs.Environment.Caller }))
	e.register(disasm.CALLVALUE, pushValue(func(gs *state.GlobalState) *smt.BitVec { return gs.Environment.CallValue }))
	e.register(disasm.GASPRICE, pushValue(func(gs *state.GlobalState) *smt.BitVec { return gs.Environment.GasPrice }))
	e.register(disasm.COINBASE, pushValue(func(gs *state.GlobalState) *smt.BitVec { return gs.Environment.Coinbase }))
	e.register(disasm.TIMESTAMP, pushValue(func(gs *state.GlobalState) *smt.BitVec { return gs.Environment.BlockTimestamp }))
	e.register(disasm.NUMBER, pushValue(func(gs *state.GlobalState) *smt.BitVec { return gs.Environment.BlockNumber }))
	e.register(disasm.PREVRANDAO, pushValue(func(gs *state.GlobalState) *smt.BitVec {
		return smt.BitVecSym("prevrandao", 256)
	}))
	e.register(disasm.GASLIMIT, pushValue(func(gs *state.GlobalState) *smt.BitVec { return gs.Environment.BlockGasLimit }))
	e.register(disasm.CHAINID, pushValue(func(gs *state.GlobalState) *smt.BitVec { return gs.Environment.ChainID }))
	e.register(disasm.BASEFEE, pushValue(func(gs *state.GlobalState) *smt.BitVec {
		return smt.BitVecSym("basefee", 256)
	}))
	e.register(disasm.BLOCKHASH, unaryArith(func(blockNumber *smt.BitVec) *smt.BitVec {
		return smt.BitVecSym("blockhash", 256)
	}))

	e.register(disasm.CALLDATASIZE, pushValue(func(gs *state.GlobalState) *smt.BitVec {
		return gs.Environment.CallData.Size()
	}))
	e.register(disasm.CALLDATALOAD, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		offsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		offset, err := concreteOffset(offsetBV)
		if err != nil {
			return nil, err
		}
		if err := next.Mstate.Stack.Push(next.Environment.CallData.Word(offset)); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})
	e.register(disasm.CALLDATACOPY, copyToMemory(func(gs *state.GlobalState, srcOffset, size int) []byte {
		out := make([]byte, size)
		for i := 0; i < size; i++ {
			if v, ok := gs.Environment.CallData.ByteAt(srcOffset + i).Value(); ok {
				out[i] = byte(v.Uint64())
			}
		}
		return out
	}))

	e.register(disasm.CODESIZE, pushValue(func(gs *state.GlobalState) *smt.BitVec {
		return smt.BitVecVal(int64(len(gs.Environment.Active.Code)), 256)
	}))
	e.register(disasm.CODECOPY, copyToMemory(func(gs *state.GlobalState, srcOffset, size int) []byte {
		return sliceZeroPadded(gs.Environment.Active.Code, srcOffset, size)
	}))

	e.register(disasm.EXTCODESIZE, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		addrBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		size := int64(0)
		if acct := lookupAccount(next, addrBV); acct != nil {
			size = int64(len(acct.Code))
		}
		if err := next.Mstate.Stack.Push(smt.BitVecVal(size, 256)); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})
	e.register(disasm.EXTCODEHASH, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		addrBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		result := smt.BitVecSym("extcodehash", 256)
		if acct := lookupAccount(next, addrBV); acct == nil {
			result = smt.BitVecVal(0, 256)
		}
		if err := next.Mstate.Stack.Push(result); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})
	e.register(disasm.EXTCODECOPY, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		addrBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		destOffsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		srcOffsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		sizeBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		destOffset, err := concreteOffset(destOffsetBV)
		if err != nil {
			return nil, err
		}
		srcOffset, err := concreteOffset(srcOffsetBV)
		if err != nil {
			return nil, err
		}
		size, err := concreteOffset(sizeBV)
		if err != nil {
			return nil, err
		}
		var code []byte
		if acct := lookupAccount(next, addrBV); acct != nil {
			code = acct.Code
		}
		data := sliceZeroPadded(code, srcOffset, size)
		writeBytesToMemory(next, destOffset, data)
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.RETURNDATASIZE, pushValue(func(gs *state.GlobalState) *smt.BitVec {
		return smt.BitVecVal(int64(len(gs.LastReturnData)), 256)
	}))
	e.register(disasm.RETURNDATACOPY, copyToMemory(func(gs *state.GlobalState, srcOffset, size int) []byte {
		return sliceZeroPadded(gs.LastReturnData, srcOffset, size)
	}))
}

// copyToMemory builds the *COPY family of handlers: pop destOffset,
// srcOffset, size; fetch size bytes from the opcode-specific source via
// read; write them into memory at destOffset.
func copyToMemory(read func(gs *state.GlobalState, srcOffset, size int) []byte) executionFunc {
	return func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		destOffsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		srcOffsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		sizeBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		destOffset, err := concreteOffset(destOffsetBV)
		if err != nil {
			return nil, err
		}
		srcOffset, err := concreteOffset(srcOffsetBV)
		if err != nil {
			return nil, err
		}
		size, err := concreteOffset(sizeBV)
		if err != nil {
			return nil, err
		}
		data := read(next, srcOffset, size)
		writeBytesToMemory(next, destOffset, data)
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	}
}

func writeBytesToMemory(gs *state.GlobalState, offset int, data []byte) {
	for i, b := range data {
		gs.Mstate.Memory.SetByte(offset+i, smt.BitVecVal(int64(b), 8))
	}
}

func sliceZeroPadded(src []byte, offset, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		idx := offset + i
		if idx >= 0 && idx < len(src) {
			out[i] = src[idx]
		}
	}
	return out
}

func lookupAccount(gs *state.GlobalState, addrBV *smt.BitVec) *state.Account {
	addr, ok := addressFromBitVec(addrBV)
	if !ok {
		return nil
	}
	return gs.World.Get(addr)
}
