// Package transaction builds the initial GlobalState for a message-call
// or contract-creation phase and defines the two transaction kinds the
// engine schedules.
package transaction

import (
	types "github.com/laserevm/laserevm/internal/evmtypes"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

// MessageCall is a CALL-style transaction: invoke an existing account's
// code with calldata, a caller, and a value. Callee names the account
// whose code executes; StorageContext names the account whose balance
// and storage that code reads and writes. For CALL and STATICCALL the
// two are the same address. For CALLCODE and DELEGATECALL, Callee's code
// runs against the calling contract's own storage, so StorageContext is
// the caller's address instead.
type MessageCall struct {
	TxID           string
	Callee         types.Address
	StorageContext types.Address
	CallerAddr     *smt.BitVec
	Data           *state.Calldata
	Value          *smt.BitVec
	GasPrice       *smt.BitVec
	Origin         *smt.BitVec
	Static         bool
}

func (t *MessageCall) ID() string             { return t.TxID }
func (t *MessageCall) IsCreate() bool         { return false }
func (t *MessageCall) CallValue() *smt.BitVec { return t.Value }

// ContractCreation is a CREATE-style transaction: run init code against
// a freshly allocated, empty account and install the returned bytes as
// its runtime code.
type ContractCreation struct {
	TxID       string
	NewAddress types.Address
	InitCode   []byte
	CallerAddr *smt.BitVec
	Value      *smt.BitVec
	GasPrice   *smt.BitVec
	Origin     *smt.BitVec
}

func (t *ContractCreation) ID() string             { return t.TxID }
func (t *ContractCreation) IsCreate() bool          { return true }
func (t *ContractCreation) CallValue() *smt.BitVec { return t.Value }

// InitialState builds the GlobalState a MessageCall begins execution in.
// The active account's storage and balance come from StorageContext; its
// code comes from Callee. For an ordinary CALL/STATICCALL the two
// addresses coincide and this is just "fetch or create the callee".
func (t *MessageCall) InitialState(world *state.WorldState) *state.GlobalState {
	storageAccount := world.GetOrCreate(t.StorageContext)
	codeAccount := storageAccount
	if t.Callee != t.StorageContext {
		codeAccount = world.GetOrCreate(t.Callee)
	}
	active := storageAccount.Copy()
	active.Code = codeAccount.Code
	active.Disasm = codeAccount.Disasm

	env := &state.Environment{
		Active:    active,
		Caller:    t.CallerAddr,
		CallData:  t.Data,
		CallValue: t.Value,
		Origin:    t.Origin,
		GasPrice:  t.GasPrice,
		Static:    t.Static,
	}
	applyDefaultBlockContext(env, t.TxID)
	g := state.NewGlobalState(world, env, state.NewMachineState())
	g.TxStack = []state.TxStackEntry{{Transaction: t}}
	return g
}

// applyDefaultBlockContext fills in the block-scoped environment fields a
// transaction doesn't carry itself. Block number, timestamp, gas limit
// and coinbase are fresh symbols scoped by txID so that two independently
// analyzed transactions never share such a solver variable, while a
// single analysis run keeps them stable across every instruction of one
// transaction. ChainID is fixed at concrete 1.
func applyDefaultBlockContext(env *state.Environment, txID string) {
	env.BlockNumber = smt.BitVecSym("blocknumber_"+txID, smt.DefaultWidth)
	env.BlockTimestamp = smt.BitVecSym("timestamp_"+txID, smt.DefaultWidth)
	env.BlockGasLimit = smt.BitVecSym("gaslimit_"+txID, smt.DefaultWidth)
	env.Coinbase = smt.BitVecSym("coinbase_"+txID, smt.DefaultWidth)
	env.ChainID = smt.BitVecVal(1, smt.DefaultWidth)
}

// InitialState builds the GlobalState a ContractCreation begins
// execution in: a fresh zero-balance account running the init code,
// with no calldata (constructor arguments, if any, are appended to the
// init code by the caller before disassembly -- out of scope here).
func (t *ContractCreation) InitialState(world *state.WorldState) *state.GlobalState {
	account := state.NewAccount(t.NewAddress)
	account.SetCode(t.InitCode)
	world.Put(account)

	env := &state.Environment{
		Active:    account,
		Caller:    t.CallerAddr,
		CallData:  state.NewConcreteCalldata(nil),
		CallValue: t.Value,
		Origin:    t.Origin,
		GasPrice:  t.GasPrice,
	}
	applyDefaultBlockContext(env, t.TxID)
	g := state.NewGlobalState(world, env, state.NewMachineState())
	g.TxStack = []state.TxStackEntry{{Transaction: t}}
	return g
}
