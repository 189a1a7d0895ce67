package vm

import (
	"strconv"

	"github.com/laserevm/laserevm/disasm"
	evmcrypto "github.com/laserevm/laserevm/internal/evmcrypto"
	types "github.com/laserevm/laserevm/internal/evmtypes"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
	"github.com/laserevm/laserevm/transaction"
)

// callKind distinguishes the four CALL-family opcodes, which share almost
// all of their argument layout and differ only in whether a value is
// popped and whose storage the callee's code executes against.
type callKind int

const (
	callKindCall callKind = iota
	callKindCallCode
	callKindDelegateCall
	callKindStaticCall
)

func (e *Evaluator) installCalls() {
	e.register(disasm.CALL, callHandler(callKindCall))
	e.register(disasm.CALLCODE, callHandler(callKindCallCode))
	e.register(disasm.DELEGATECALL, callHandler(callKindDelegateCall))
	e.register(disasm.STATICCALL, callHandler(callKindStaticCall))
	e.register(disasm.CREATE, createHandler(false))
	e.register(disasm.CREATE2, createHandler(true))
}

func (k callKind) opcode() disasm.OpCode {
	switch k {
	case callKindCall:
		return disasm.CALL
	case callKindCallCode:
		return disasm.CALLCODE
	case callKindDelegateCall:
		return disasm.DELEGATECALL
	default:
		return disasm.STATICCALL
	}
}

// callHandler builds the handler for one CALL-family opcode. It pops the
// opcode's arguments, resolves the target's argument bytes out of memory,
// and raises StartTransaction so the engine can hand control to the
// callee; the result (success/failure, return data) isn't known until the
// callee finishes, so pushing it is the engine's job when it resumes this
// caller. A symbolic target address is the exception: the handler pushes
// a fresh symbolic success flag itself and returns Continue.
func callHandler(kind callKind) executionFunc {
	takesValue := kind == callKindCall || kind == callKindCallCode
	return func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()

		if _, err := next.Mstate.Stack.Pop(); err != nil { // gas
			return nil, err
		}
		addrBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}

		value := smt.BitVecVal(0, 256)
		if takesValue {
			value, err = next.Mstate.Stack.Pop()
			if err != nil {
				return nil, err
			}
		}

		argsOffsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		argsSizeBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		retOffsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		retSizeBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}

		if takesValue && gs.Environment.Static {
			if v, ok := value.Value(); !ok || v.Sign() != 0 {
				return nil, ErrStaticWrite
			}
		}

		argsOffset, err := concreteOffset(argsOffsetBV)
		if err != nil {
			return nil, err
		}
		argsSize, err := concreteOffset(argsSizeBV)
		if err != nil {
			return nil, err
		}
		retOffset, err := concreteOffset(retOffsetBV)
		if err != nil {
			return nil, err
		}
		retSize, err := concreteOffset(retSizeBV)
		if err != nil {
			return nil, err
		}

		next.Mstate.PC++
		next.Mstate.Depth++

		target, ok := addressFromBitVec(addrBV)
		if !ok {
			// A symbolic callee can't be resolved to a concrete account to
			// recurse into. Rather than abandoning the path -- which would
			// hide the call from the state-change-after-external-call
			// detector's pre-hook, fired on this very opcode before this
			// handler ran -- stub the call: push an unknown success flag
			// and leave the return-data region untouched, then keep
			// executing this frame.
			if err := next.Mstate.Stack.Push(smt.BitVecSym("call_success_"+strconv.Itoa(e.nextTxID()), 256)); err != nil {
				return nil, err
			}
			next.LastReturnData = nil
			return Continue{States: []*state.GlobalState{next}}, nil
		}

		argBytes := next.Mstate.Memory.GetSymbolic(argsOffset, argsSize)
		calldata := state.NewForwardedCalldata(argBytes)

		txID := "call" + strconv.Itoa(e.nextTxID())

		callerAddr := state.AddressToBitVec(next.Environment.Active.Address)
		callValue := value
		storageContext := target
		static := kind == callKindStaticCall || gs.Environment.Static

		switch kind {
		case callKindDelegateCall:
			callerAddr = next.Environment.Caller
			callValue = next.Environment.CallValue
			storageContext = next.Environment.Active.Address
		case callKindCallCode:
			storageContext = next.Environment.Active.Address
		}

		tx := &transaction.MessageCall{
			TxID:           txID,
			Callee:         target,
			StorageContext: storageContext,
			CallerAddr:     callerAddr,
			Data:           calldata,
			Value:          callValue,
			GasPrice:       next.Environment.GasPrice,
			Origin:         next.Environment.Origin,
			Static:         static,
		}

		return StartTransaction{Transaction: tx, CallerState: next, RetOffset: retOffset, RetSize: retSize, OriginOp: kind.opcode()}, nil
	}
}

// createHandler builds the handler for CREATE/CREATE2: pop value, init
// code offset/size (and, for CREATE2, a salt), derive the new contract's
// address, and raise StartTransaction. Address derivation here is a
// deliberate simplification of the real scheme (keccak256 of RLP-encoded
// sender+nonce for CREATE, keccak256(0xff ++ sender ++ salt ++
// initcodehash) for CREATE2): it keeps the salt/sender/nonce-dependence
// CREATE2 detectors care about without pulling in an RLP encoder for a
// detail no detection module inspects beyond "is this a fresh address".
func createHandler(isCreate2 bool) executionFunc {
	return func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		if gs.Environment.Static {
			return nil, ErrStaticWrite
		}
		next := gs.Copy()

		value, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		offsetBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		sizeBV, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		var salt *smt.BitVec
		if isCreate2 {
			salt, err = next.Mstate.Stack.Pop()
			if err != nil {
				return nil, err
			}
		}

		offset, err := concreteOffset(offsetBV)
		if err != nil {
			return nil, err
		}
		size, err := concreteOffset(sizeBV)
		if err != nil {
			return nil, err
		}

		next.Mstate.PC++
		next.Mstate.Depth++

		initCode := next.Mstate.Memory.GetBytes(offset, size)
		sender := next.Environment.Active.Address

		var addr types.Address
		if isCreate2 {
			saltBytes := make([]byte, 32)
			if sv, ok := salt.Value(); ok {
				b := sv.Bytes()
				copy(saltBytes[32-len(b):], b)
			}
			initCodeHash := evmcrypto.Keccak256(initCode)
			addr = types.BytesToAddress(evmcrypto.Keccak256(
				[]byte{0xff}, sender.Bytes(), saltBytes, initCodeHash,
			))
		} else {
			nonce := next.Environment.Active.Nonce
			nonceBytes := []byte(strconv.FormatUint(nonce, 10))
			addr = types.BytesToAddress(evmcrypto.Keccak256(sender.Bytes(), nonceBytes))
		}
		next.Environment.Active.Nonce++

		txID := "create" + strconv.Itoa(e.nextTxID())
		tx := &transaction.ContractCreation{
			TxID:       txID,
			NewAddress: addr,
			InitCode:   initCode,
			CallerAddr: state.AddressToBitVec(sender),
			Value:      value,
			GasPrice:   next.Environment.GasPrice,
			Origin:     next.Environment.Origin,
		}

		op := disasm.CREATE
		if isCreate2 {
			op = disasm.CREATE2
		}
		return StartTransaction{Transaction: tx, CallerState: next, OriginOp: op}, nil
	}
}
