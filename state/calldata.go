package state

import "github.com/laserevm/laserevm/smt"

// Calldata is the input byte sequence of a transaction. It may be fully
// concrete (a literal call from a test or the CLI), fully symbolic (an
// adversary-controlled message call, the common analysis case), or
// forwarded: the byte expressions a caller's memory held for a call's
// argument region, each concrete or symbolic, with a concrete length.
type Calldata struct {
	concrete []byte
	symbolic bool
	bytes    []*smt.BitVec // non-nil for calldata forwarded from a caller's memory
	txID     string
}

// NewConcreteCalldata wraps a literal byte slice.
func NewConcreteCalldata(data []byte) *Calldata {
	return &Calldata{concrete: data}
}

// NewSymbolicCalldata returns calldata whose every byte and whose length
// are symbolic, scoped by txID so that two different transactions never
// share a solver variable.
func NewSymbolicCalldata(txID string) *Calldata {
	return &Calldata{symbolic: true, txID: txID}
}

// NewForwardedCalldata wraps the exact byte-wide expressions read out of a
// caller's memory for a CALL/CREATE's argument region, so a symbolic byte
// the caller wrote survives into the callee's CALLDATALOAD untouched
// instead of being concretized to zero.
func NewForwardedCalldata(bytes []*smt.BitVec) *Calldata {
	return &Calldata{bytes: bytes}
}

// IsSymbolic reports whether this is fully symbolic calldata (built by
// NewSymbolicCalldata). It is false for forwarded calldata even when some
// of its bytes are symbolic.
func (c *Calldata) IsSymbolic() bool { return c.symbolic }

// Size returns the calldata length as a BitVec: concrete for concrete or
// forwarded calldata, a fresh symbolic value (non-negative by
// construction) for symbolic calldata.
func (c *Calldata) Size() *smt.BitVec {
	if c.bytes != nil {
		return smt.BitVecVal(int64(len(c.bytes)), smt.DefaultWidth)
	}
	if !c.symbolic {
		return smt.BitVecVal(int64(len(c.concrete)), smt.DefaultWidth)
	}
	return smt.BitVecSym("calldatasize_"+c.txID, smt.DefaultWidth)
}

// ByteAt returns the byte at a concrete index: concrete zero past the end
// of concrete or forwarded calldata, a fresh per-index symbol for
// symbolic calldata (so CALLDATALOAD of the same offset twice returns the
// same variable, matching a real message's immutability).
func (c *Calldata) ByteAt(index int) *smt.BitVec {
	if c.bytes != nil {
		if index < 0 || index >= len(c.bytes) {
			return smt.BitVecVal(0, 8)
		}
		return c.bytes[index]
	}
	if !c.symbolic {
		if index < 0 || index >= len(c.concrete) {
			return smt.BitVecVal(0, 8)
		}
		return smt.BitVecVal(int64(c.concrete[index]), 8)
	}
	return smt.BitVecSym("calldata_"+c.txID+"_"+itoaHelper(index), 8)
}

// Word returns the 32-byte big-endian word starting at a concrete offset.
func (c *Calldata) Word(offset int) *smt.BitVec {
	bytes := make([]*smt.BitVec, 32)
	for i := 0; i < 32; i++ {
		bytes[i] = c.ByteAt(offset + i)
	}
	return smt.Concat(bytes...)
}

func itoaHelper(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
