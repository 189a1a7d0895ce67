package state

import (
	"github.com/laserevm/laserevm/disasm"
	types "github.com/laserevm/laserevm/internal/evmtypes"
	"github.com/laserevm/laserevm/smt"
)

// Account is one entry of the world state: an address plus its balance,
// nonce, code, and storage. Balance and code may both be unknown to the
// engine -- an account reached only through a symbolic CALL target has
// neither until (and unless) a dynamic loader resolves it.
type Account struct {
	Address types.Address
	Balance *smt.BitVec
	Nonce   uint64
	Code    []byte
	Disasm  *disasm.Disassembly // nil for unknown/precompile-only accounts
	Storage *Storage

	// Deleted marks the account for removal on world commit, set by
	// SELFDESTRUCT. Deletion is deferred to commit time per EVM semantics
	// (the account remains readable for the rest of the current transaction).
	Deleted bool
}

// NewAccount creates a fresh account with zero balance/nonce, empty code,
// and concrete (non-dynamic) storage.
func NewAccount(addr types.Address) *Account {
	return &Account{
		Address: addr,
		Balance: smt.BitVecVal(0, smt.DefaultWidth),
		Storage: NewStorage(addr.Hex(), false),
	}
}

// SetCode attaches bytecode to the account and disassembles it.
func (a *Account) SetCode(code []byte) {
	a.Code = code
	a.Disasm = disasm.Disassemble(code)
}

// Copy returns an Account sharing no mutable backing state with the
// receiver: callers get an independent value to mutate on one branch
// without affecting any other branch that still references the original.
func (a *Account) Copy() *Account {
	cp := *a
	if a.Code != nil {
		cp.Code = append([]byte(nil), a.Code...)
		cp.Disasm = a.Disasm // immutable once built; safe to share
	}
	cp.Storage = a.Storage.Copy()
	return &cp
}
