package state

import (
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/smt"
)

// Transaction is the subset of a transaction's identity that the engine
// and GlobalState need to reference without depending on the
// transaction package directly (which itself depends on state to build
// initial global states -- this interface breaks that cycle). The
// transaction package's MessageCall and ContractCreation both satisfy it.
type Transaction interface {
	// ID is a unique, stable identifier used to scope this transaction's
	// symbolic calldata/caller/value variables.
	ID() string
	IsCreate() bool
	CallValue() *smt.BitVec
	// InitialState builds the GlobalState the transaction begins in.
	InitialState(world *WorldState) *GlobalState
}

// TxStackEntry pairs a transaction with the caller's GlobalState that
// spawned it, or a nil CallerState for a top-level transaction.
// RetOffset/RetSize locate the caller's memory region that should receive
// the callee's return data (meaningless for a creation transaction,
// which installs the return data as code instead). OriginOp is the
// specific CALL-family or CREATE-family opcode that spawned this
// transaction, used to key the post-hook run on resume.
type TxStackEntry struct {
	Transaction Transaction
	CallerState *GlobalState
	RetOffset   int
	RetSize     int
	OriginOp    disasm.OpCode
}
