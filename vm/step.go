// Package vm is the instruction evaluator: one pure transition function
// per EVM opcode, from a GlobalState to a Step describing what the
// engine should do next. It never mutates its input state and never
// raises control-flow signals directly -- the corpus this is ported
// from used exceptions to jump from the evaluator into the engine on
// transaction boundaries; here that control transfer is reified as the
// Step result instead, so the engine can just switch on it.
package vm

import (
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/state"
)

// Step is the result of executing one instruction. Exactly one of the
// three concrete kinds is ever produced.
type Step interface {
	isStep()
}

// Continue is the ordinary case: the successor states to enqueue -- one
// for most opcodes, two for a JUMPI on a symbolic condition with a valid
// destination. No handler checks branch feasibility with the solver.
type Continue struct {
	States []*state.GlobalState
}

func (Continue) isStep() {}

// StartTransaction is raised by a CALL-family or CREATE opcode: the
// engine must build the callee's initial state from Transaction, push
// CallerState onto its transaction stack, and resume there. RetOffset and
// RetSize locate where, in the caller's memory, the callee's return data
// should be written once it finishes; they are meaningless (zero) for a
// CREATE-family Transaction, which instead installs the returned bytes as
// the new account's code.
type StartTransaction struct {
	Transaction state.Transaction
	CallerState *state.GlobalState
	RetOffset   int
	RetSize     int
	OriginOp    disasm.OpCode
}

func (StartTransaction) isStep() {}

// EndTransaction is raised by a terminator opcode (STOP, RETURN, REVERT,
// SELFDESTRUCT, INVALID/ASSERT_FAIL): State is the final state of the
// completed transaction, ready for the engine to pop the transaction
// stack and either commit it (top-level) or resume the caller.
type EndTransaction struct {
	State      *state.GlobalState
	ReturnData []byte
	Reverted   bool
}

func (EndTransaction) isStep() {}
