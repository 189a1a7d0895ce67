package smt

import "math/big"

// DefaultWidth is the bit-vector width the engine uses for every EVM word
// (stack slots, storage values, memory words, account balances).
const DefaultWidth = 256

// BitVec is a bit-vector-sorted symbolic expression: an EVM stack item,
// storage value, or any derived arithmetic/bitwise result.
type BitVec struct {
	base
}

func newBitVec(t term, annotations []Annotation) *BitVec {
	return &BitVec{base{t: t, annotations: annotations}}
}

// BitVecVal constructs a concrete bit-vector literal of the given width.
func BitVecVal(value int64, width int) *BitVec {
	return newBitVec(&bvConst{width: width, val: umod(big.NewInt(value), width)}, nil)
}

// BitVecValFromBig constructs a concrete literal from an arbitrary-precision value.
func BitVecValFromBig(value *big.Int, width int) *BitVec {
	return newBitVec(&bvConst{width: width, val: umod(value, width)}, nil)
}

// BitVecSym constructs a free bit-vector variable. Two calls with the
// same name and width refer to the same solver variable.
func BitVecSym(name string, width int) *BitVec {
	return newBitVec(&bvSym{width: width, name: name}, nil)
}

// Size returns the bit-vector's width.
func (b *BitVec) Size() int { return b.t.sort() }

// IsSymbolic reports whether this value is not a numeric literal after
// local simplification -- it first tries to fold the term down to a
// constant so that e.g. `x - x` is not misreported as symbolic.
func (b *BitVec) IsSymbolic() bool {
	_, ok := simplify(b.t).(*bvConst)
	return !ok
}

// Value returns the concrete integer value if this BitVec is not
// symbolic, and ok=false otherwise.
func (b *BitVec) Value() (v *big.Int, ok bool) {
	s := simplify(b.t)
	c, isConst := s.(*bvConst)
	if !isConst {
		return nil, false
	}
	return new(big.Int).Set(c.val), true
}

// String renders the expression for debug output.
func (b *BitVec) String() string { return b.t.String() }

func (b *BitVec) bin(op opKind, other *BitVec) *BitVec {
	return newBitVec(&bvBin{op: op, width: b.Size(), a: b.t, b: other.t}, unionAnnotations(b.annotations, other.annotations))
}

func (b *BitVec) cmp(op opKind, other *BitVec) *Bool {
	return newBool(&boolCmp{op: op, a: b.t, b: other.t}, unionAnnotations(b.annotations, other.annotations))
}

// Add returns a + b mod 2^n.
func (b *BitVec) Add(other *BitVec) *BitVec { return b.bin(opAdd, other) }

// Sub returns a - b mod 2^n.
func (b *BitVec) Sub(other *BitVec) *BitVec { return b.bin(opSub, other) }

// Mul returns a * b mod 2^n.
func (b *BitVec) Mul(other *BitVec) *BitVec { return b.bin(opMul, other) }

// SDiv returns signed a / b (EVM semantics: division by zero is zero).
func (b *BitVec) SDiv(other *BitVec) *BitVec { return b.bin(opSDiv, other) }

// SMod returns signed a % b (EVM semantics: remainder by zero is zero).
func (b *BitVec) SMod(other *BitVec) *BitVec { return b.bin(opSMod, other) }

// UDiv returns unsigned a / b (EVM semantics: division by zero is zero).
func (b *BitVec) UDiv(other *BitVec) *BitVec { return b.bin(opUDiv, other) }

// URem returns unsigned a % b (EVM semantics: remainder by zero is zero).
func (b *BitVec) URem(other *BitVec) *BitVec { return b.bin(opURem, other) }

// SRem returns the signed remainder of a and b.
func (b *BitVec) SRem(other *BitVec) *BitVec { return b.bin(opSRem, other) }

// And returns the bitwise AND of a and b.
func (b *BitVec) And(other *BitVec) *BitVec { return b.bin(opAnd, other) }

// Or returns the bitwise OR of a and b.
func (b *BitVec) Or(other *BitVec) *BitVec { return b.bin(opOr, other) }

// Xor returns the bitwise XOR of a and b.
func (b *BitVec) Xor(other *BitVec) *BitVec { return b.bin(opXor, other) }

// Shl returns a shifted left by b bits (shifts >= width yield zero).
func (b *BitVec) Shl(other *BitVec) *BitVec { return b.bin(opShl, other) }

// Shr returns a shifted right (logical) by b bits.
func (b *BitVec) Shr(other *BitVec) *BitVec { return b.bin(opShr, other) }

// Sar returns a shifted right (arithmetic, sign-extending) by b bits.
func (b *BitVec) Sar(other *BitVec) *BitVec { return b.bin(opSar, other) }

// Not returns the bitwise complement of a.
func (b *BitVec) Not() *BitVec {
	return newBitVec(&bvNot{width: b.Size(), a: b.t}, append([]Annotation{}, b.annotations...))
}

// Lt returns the signed less-than predicate a < b.
func (b *BitVec) Lt(other *BitVec) *Bool { return b.cmp(opLt, other) }

// Gt returns the signed greater-than predicate a > b.
func (b *BitVec) Gt(other *BitVec) *Bool { return b.cmp(opGt, other) }

// Sle returns the signed less-or-equal predicate a <= b.
func (b *BitVec) Sle(other *BitVec) *Bool { return b.cmp(opSle, other) }

// Sge returns the signed greater-or-equal predicate a >= b.
func (b *BitVec) Sge(other *BitVec) *Bool { return b.cmp(opSge, other) }

// Ult returns the unsigned less-than predicate a < b.
func (b *BitVec) Ult(other *BitVec) *Bool { return b.cmp(opUlt, other) }

// Ugt returns the unsigned greater-than predicate a > b.
func (b *BitVec) Ugt(other *BitVec) *Bool { return b.cmp(opUgt, other) }

// Ule returns the unsigned less-or-equal predicate a <= b.
func (b *BitVec) Ule(other *BitVec) *Bool { return b.cmp(opUle, other) }

// Uge returns the unsigned greater-or-equal predicate a >= b.
func (b *BitVec) Uge(other *BitVec) *Bool { return b.cmp(opUge, other) }

// Eq returns the equality predicate a == b.
func (b *BitVec) Eq(other *BitVec) *Bool { return b.cmp(opEq, other) }

// Ne returns the inequality predicate a != b.
func (b *BitVec) Ne(other *BitVec) *Bool { return b.cmp(opNe, other) }

// Ite builds an if-then-else bit-vector expression, unioning all three
// operands' annotations per the propagation rule in the data model.
func Ite(cond *Bool, t, f *BitVec) *BitVec {
	return newBitVec(&bvIte{width: t.Size(), cond: cond.t, t: t.t, f: f.t},
		unionAnnotations(cond.annotations, t.annotations, f.annotations))
}

// Extract slices bits [hi:lo] (inclusive, 0-indexed from the LSB) out of a.
func Extract(hi, lo int, a *BitVec) *BitVec {
	return newBitVec(&bvExtract{hi: hi, lo: lo, a: a.t}, append([]Annotation{}, a.annotations...))
}

// Concat concatenates bit-vectors left to right (args[0] most significant).
func Concat(args ...*BitVec) *BitVec {
	terms := make([]term, len(args))
	var anns [][]Annotation
	for i, a := range args {
		terms[i] = a.t
		anns = append(anns, a.annotations)
	}
	return newBitVec(&bvConcat{args: terms}, unionAnnotations(anns...))
}

// BVAddNoOverflow builds the predicate "a+b does not overflow". EVM
// arithmetic is always performed unsigned mod 2^256, so detectors pass
// signed=false. The signed flag is accepted on the facade but ignored:
// the predicate is always the unsigned one, here and in BVMulNoOverflow
// and BVSubNoUnderflow.
func BVAddNoOverflow(a, b *BitVec, signed bool) *Bool {
	return a.cmp(opAddNoOverflow, b)
}

// BVMulNoOverflow builds the predicate "a*b does not overflow".
func BVMulNoOverflow(a, b *BitVec, signed bool) *Bool {
	return a.cmp(opMulNoOverflow, b)
}

// BVSubNoUnderflow builds the predicate "a-b does not underflow".
func BVSubNoUnderflow(a, b *BitVec, signed bool) *Bool {
	return a.cmp(opSubNoUnderflow, b)
}
