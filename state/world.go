package state

import types "github.com/laserevm/laserevm/internal/evmtypes"

// WorldState is the mapping from address to Account, plus a
// back-reference to the CFG node that produced it -- used to stitch
// transaction boundaries back into the graph when a committed world is
// picked up as the input to the next message-call phase.
//
// Copy uses structural sharing: Copy() duplicates the address-to-Account
// map (one entry per account) but not the Accounts themselves, so
// unrelated branches share every Account they haven't diverged on. A
// branch that wants to mutate an account must fetch it, call
// Account.Copy(), mutate the copy, and Put it back.
type WorldState struct {
	accounts map[types.Address]*Account
	NodeUID  int
}

// NewWorldState returns an empty world state.
func NewWorldState() *WorldState {
	return &WorldState{accounts: map[types.Address]*Account{}}
}

// Copy returns a WorldState sharing every Account pointer with the
// receiver until the caller replaces one via Put.
func (w *WorldState) Copy() *WorldState {
	accounts := make(map[types.Address]*Account, len(w.accounts))
	for addr, acct := range w.accounts {
		accounts[addr] = acct
	}
	return &WorldState{accounts: accounts, NodeUID: w.NodeUID}
}

// Get returns the account at addr, or nil if it doesn't exist.
func (w *WorldState) Get(addr types.Address) *Account {
	return w.accounts[addr]
}

// Put installs (or replaces) the account at its own address.
func (w *WorldState) Put(acct *Account) {
	w.accounts[acct.Address] = acct
}

// GetOrCreate returns the existing account at addr, or installs and
// returns a fresh zero-value one.
func (w *WorldState) GetOrCreate(addr types.Address) *Account {
	if acct, ok := w.accounts[addr]; ok {
		return acct
	}
	acct := NewAccount(addr)
	w.Put(acct)
	return acct
}

// Commit finalizes pending SELFDESTRUCTs, removing marked accounts from
// the world. Called once at transaction end, never mid-transaction (an
// account must stay readable for the rest of its own transaction).
func (w *WorldState) Commit() {
	for addr, acct := range w.accounts {
		if acct.Deleted {
			delete(w.accounts, addr)
		}
	}
}

// Addresses returns every address currently present in the world state.
func (w *WorldState) Addresses() []types.Address {
	out := make([]types.Address, 0, len(w.accounts))
	for addr := range w.accounts {
		out = append(out, addr)
	}
	return out
}
