package state

import "github.com/laserevm/laserevm/smt"

// Storage is a per-account mapping from 256-bit key to 256-bit value.
// Unread keys default to concrete zero unless the Storage was created
// with dynamic=true (NewAccount always passes false), in which case
// every unread key instead returns a fresh symbolic value scoped to this
// account, keeping branches independent.
type Storage struct {
	address string
	data    map[string]*smt.BitVec
	keys    map[string]*smt.BitVec // original key expression, for witness reporting
	dynamic bool
}

// NewStorage creates empty storage for the given account address.
// dynamic selects whether unread keys resolve to a fresh symbolic value
// (true, the "no concrete world" mode) or concrete zero (false).
func NewStorage(address string, dynamic bool) *Storage {
	return &Storage{
		address: address,
		data:    map[string]*smt.BitVec{},
		keys:    map[string]*smt.BitVec{},
		dynamic: dynamic,
	}
}

// Copy returns a Storage sharing no backing map with the receiver.
func (s *Storage) Copy() *Storage {
	data := make(map[string]*smt.BitVec, len(s.data))
	for k, v := range s.data {
		data[k] = v
	}
	keys := make(map[string]*smt.BitVec, len(s.keys))
	for k, v := range s.keys {
		keys[k] = v
	}
	return &Storage{address: s.address, data: data, keys: keys, dynamic: s.dynamic}
}

func storageKeyString(key *smt.BitVec) (string, bool) {
	if v, ok := key.Value(); ok {
		return v.String(), true
	}
	return key.String(), false
}

// Load reads the value at key, returning concrete/symbolic zero (or a
// fresh symbolic value in dynamic mode) for a key never written.
func (s *Storage) Load(key *smt.BitVec) *smt.BitVec {
	k, _ := storageKeyString(key)
	if v, ok := s.data[k]; ok {
		return v
	}
	if s.dynamic {
		fresh := smt.BitVecSym("storage_"+s.address+"_"+k, smt.DefaultWidth)
		s.data[k] = fresh
		s.keys[k] = key
		return fresh
	}
	return smt.BitVecVal(0, smt.DefaultWidth)
}

// Store writes value at key.
func (s *Storage) Store(key, value *smt.BitVec) {
	k, _ := storageKeyString(key)
	s.data[k] = value
	s.keys[k] = key
}

// Keys returns the symbolic key expressions that have been touched, for
// witness/debug reporting.
func (s *Storage) Keys() []*smt.BitVec {
	out := make([]*smt.BitVec, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, k)
	}
	return out
}
