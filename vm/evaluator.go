package vm

import (
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/state"
)

// DynamicLoader is the injected collaborator used to populate concrete
// storage values the engine hasn't seen yet: SLOAD consults FetchStorage
// for a concrete key when OnchainAccess is set; FetchCode is not called
// by the evaluator. It may be nil, in which case SLOAD reads only the
// account's own Storage (concrete zero for keys never written, since
// accounts are created with concrete storage) and an account the world
// state doesn't hold has empty code.
type DynamicLoader interface {
	FetchCode(address string) ([]byte, bool)
	FetchStorage(address string, key uint64) (uint64, bool)
}

// executionFunc is the per-opcode transition function.
type executionFunc func(e *Evaluator, gs *state.GlobalState) (Step, error)

// Evaluator dispatches one instruction at a time through a 256-entry
// jump table indexed by opcode byte, mirroring the jump-table dispatch
// style used by concrete EVM interpreters: table construction happens
// once, Execute is then a single slice index plus a call.
type Evaluator struct {
	table         [256]executionFunc
	Loader        DynamicLoader
	OnchainAccess bool

	txCounter int
}

// NewEvaluator builds an Evaluator with every opcode category wired in.
func NewEvaluator(loader DynamicLoader, onchainAccess bool) *Evaluator {
	e := &Evaluator{Loader: loader, OnchainAccess: onchainAccess}
	e.installArithmetic()
	e.installComparisonAndBitwise()
	e.installStackOps()
	e.installMemoryOps()
	e.installStorageOps()
	e.installControlOps()
	e.installEnvironmentOps()
	e.installLogOps()
	e.installCalls()
	e.installTerminators()
	return e
}

func (e *Evaluator) register(op disasm.OpCode, fn executionFunc) {
	e.table[op] = fn
}

// nextTxID returns a fresh, monotonically-increasing identifier to scope
// a new transaction's symbolic variables.
func (e *Evaluator) nextTxID() int {
	e.txCounter++
	return e.txCounter
}

// PeekOp returns the opcode Execute would dispatch on for gs, without
// running it. The engine uses this to know which opcode's pre-hooks to
// fire before calling Execute.
func (e *Evaluator) PeekOp(gs *state.GlobalState) disasm.OpCode {
	account := gs.Environment.Active
	if account.Disasm == nil {
		return disasm.STOP
	}
	return account.Disasm.At(gs.Mstate.PC)
}

// Execute runs the instruction at the current PC of gs and returns the
// resulting Step. gs is never mutated: handlers operate on gs.Copy().
func (e *Evaluator) Execute(gs *state.GlobalState) (Step, error) {
	op := e.PeekOp(gs)
	fn := e.table[op]
	if fn == nil {
		return nil, ErrUnimplementedOp
	}
	return fn(e, gs)
}
