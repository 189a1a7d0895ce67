package state

import (
	"math/big"

	types "github.com/laserevm/laserevm/internal/evmtypes"
	"github.com/laserevm/laserevm/smt"
)

// Environment holds the transaction-scoped values an instruction
// evaluator can read but never mutates in place: the active account,
// its caller, the calldata, and the block/transaction context.
type Environment struct {
	Active             *Account
	Caller             *smt.BitVec // 256-bit, upper bits zero; Address.Hex() when concrete
	CallData           *Calldata
	CallValue          *smt.BitVec
	Origin             *smt.BitVec
	GasPrice           *smt.BitVec
	ActiveFunctionName string

	// Static marks a frame entered via STATICCALL, in which SSTORE (and
	// any further CALL carrying value) must be rejected.
	Static bool

	// Block context, constant for the lifetime of a single analysis run.
	BlockNumber    *smt.BitVec
	BlockTimestamp *smt.BitVec
	BlockGasLimit  *smt.BitVec
	Coinbase       *smt.BitVec
	ChainID        *smt.BitVec
}

// Copy returns an Environment whose Active account is independently
// mutable; the remaining fields are immutable values safe to share.
func (e *Environment) Copy() *Environment {
	cp := *e
	cp.Active = e.Active.Copy()
	return &cp
}

// AddressToBitVec left-pads a 20-byte address into a 256-bit word, the
// representation CALLER/ORIGIN/ADDRESS push onto the stack.
func AddressToBitVec(addr types.Address) *smt.BitVec {
	var widened [32]byte
	copy(widened[12:], addr[:])
	v := new(big.Int).SetBytes(widened[:])
	return smt.BitVecValFromBig(v, smt.DefaultWidth)
}
