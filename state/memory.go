package state

import "github.com/laserevm/laserevm/smt"

// Memory is the EVM's byte-addressed scratch space. Each byte is an
// independent 8-bit BitVec so that symbolic values written by CALLDATACOPY
// or a symbolic MSTORE survive byte-for-byte; reads past the
// highest-written offset return concrete zero, matching the "sparse,
// zero-filled" semantics of the real machine. Offsets and sizes must be
// concrete by the time they reach Memory -- the instruction evaluator
// abandons the path (ErrOutOfBoundsOffset) when an offset or size is
// symbolic, before indexing here.
type Memory struct {
	store []*smt.BitVec
}

// NewMemory returns a new, empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Copy returns a Memory sharing no backing array with the receiver.
func (m *Memory) Copy() *Memory {
	out := make([]*smt.BitVec, len(m.store))
	copy(out, m.store)
	return &Memory{store: out}
}

// Resize grows memory to at least size bytes, zero-filling the new region.
func (m *Memory) Resize(size int) {
	if size <= len(m.store) {
		return
	}
	grown := make([]*smt.BitVec, size)
	copy(grown, m.store)
	for i := len(m.store); i < size; i++ {
		grown[i] = smt.BitVecVal(0, 8)
	}
	m.store = grown
}

// Len returns the current size of memory in bytes.
func (m *Memory) Len() int { return len(m.store) }

// SetByte writes a single symbolic or concrete byte at offset, growing
// memory if necessary.
func (m *Memory) SetByte(offset int, b *smt.BitVec) {
	m.Resize(offset + 1)
	m.store[offset] = b
}

// GetByte reads a single byte, returning concrete zero past the
// highest-written offset.
func (m *Memory) GetByte(offset int) *smt.BitVec {
	if offset < 0 || offset >= len(m.store) {
		return smt.BitVecVal(0, 8)
	}
	return m.store[offset]
}

// Set writes size bytes of value (an arbitrary-width BitVec, big-endian)
// starting at offset, consuming it one byte at a time via Extract.
func (m *Memory) Set(offset, size int, value *smt.BitVec) {
	if size == 0 {
		return
	}
	m.Resize(offset + size)
	width := value.Size()
	for i := 0; i < size; i++ {
		bitHi := width - 1 - i*8
		bitLo := bitHi - 7
		var b *smt.BitVec
		if bitLo < 0 {
			b = smt.BitVecVal(0, 8)
		} else {
			b = smt.Extract(bitHi, bitLo, value)
		}
		m.store[offset+i] = b
	}
}

// Set32 writes a 256-bit word at offset, big-endian (the MSTORE shape).
func (m *Memory) Set32(offset int, value *smt.BitVec) {
	m.Set(offset, 32, value)
}

// Get reads size bytes starting at offset and reassembles them
// big-endian into a single (size*8)-bit BitVec.
func (m *Memory) Get(offset, size int) *smt.BitVec {
	if size == 0 {
		return smt.BitVecVal(0, 8)
	}
	bytes := make([]*smt.BitVec, size)
	for i := 0; i < size; i++ {
		bytes[i] = m.GetByte(offset + i)
	}
	return smt.Concat(bytes...)
}

// GetSymbolic returns the size BitVecs stored at [offset, offset+size),
// preserving symbolic bytes rather than concretizing them -- used to
// forward a CALL's argument region into the callee's calldata untouched.
func (m *Memory) GetSymbolic(offset, size int) []*smt.BitVec {
	out := make([]*smt.BitVec, size)
	for i := 0; i < size; i++ {
		out[i] = m.GetByte(offset + i)
	}
	return out
}

// GetBytes returns a concrete []byte snapshot of [offset, offset+size),
// for callers that only need a raw byte view (e.g. hashing, logging).
// Symbolic bytes that haven't been concretized yet are rendered as 0.
func (m *Memory) GetBytes(offset, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size; i++ {
		b := m.GetByte(offset + i)
		if v, ok := b.Value(); ok {
			out[i] = byte(v.Uint64())
		}
	}
	return out
}
