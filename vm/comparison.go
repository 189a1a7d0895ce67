package vm

import (
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

func boolToWord(b *smt.Bool) *smt.BitVec {
	return smt.Ite(b, smt.BitVecVal(1, 256), smt.BitVecVal(0, 256))
}

// binaryPredicate mirrors binaryArith's top/second pop order for ops
// that produce a Bool, which is then widened back to a 256-bit word.
func binaryPredicate(apply func(top, second *smt.BitVec) *smt.Bool) executionFunc {
	return func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		top, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		second, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		if err := next.Mstate.Stack.Push(boolToWord(apply(top, second))); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	}
}

func (e *Evaluator) installComparisonAndBitwise() {
	e.register(disasm.LT, binaryPredicate(func(top, second *smt.BitVec) *smt.Bool { return top.Ult(second) }))
	e.register(disasm.GT, binaryPredicate(func(top, second *smt.BitVec) *smt.Bool { return top.Ugt(second) }))
	e.register(disasm.SLT, binaryPredicate(func(top, second *smt.BitVec) *smt.Bool { return top.Lt(second) }))
	e.register(disasm.SGT, binaryPredicate(func(top, second *smt.BitVec) *smt.Bool { return top.Gt(second) }))
	e.register(disasm.EQ, binaryPredicate(func(top, second *smt.BitVec) *smt.Bool { return top.Eq(second) }))

	e.register(disasm.AND, binaryArith(func(top, second *smt.BitVec) *smt.BitVec { return top.And(second) }))
	e.register(disasm.OR, binaryArith(func(top, second *smt.BitVec) *smt.BitVec { return top.Or(second) }))
	e.register(disasm.XOR, binaryArith(func(top, second *smt.BitVec) *smt.BitVec { return top.Xor(second) }))

	// SHL/SHR/SAR: top of stack is the shift amount, second is the value.
	e.register(disasm.SHL, binaryArith(func(shift, value *smt.BitVec) *smt.BitVec { return value.Shl(shift) }))
	e.register(disasm.SHR, binaryArith(func(shift, value *smt.BitVec) *smt.BitVec { return value.Shr(shift) }))
	e.register(disasm.SAR, binaryArith(func(shift, value *smt.BitVec) *smt.BitVec { return value.Sar(shift) }))

	e.register(disasm.ISZERO, unaryArith(func(a *smt.BitVec) *smt.BitVec {
		return boolToWord(a.Eq(smt.BitVecVal(0, 256)))
	}))
	e.register(disasm.NOT, unaryArith(func(a *smt.BitVec) *smt.BitVec { return a.Not() }))

	// BYTE: top of stack is the byte index (0 = most significant byte), second is the value.
	e.register(disasm.BYTE, binaryArith(func(i, value *smt.BitVec) *smt.BitVec {
		idx, ok := i.Value()
		if !ok || idx.Sign() < 0 || idx.Int64() >= 32 {
			return smt.BitVecVal(0, 256)
		}
		bitHi := 255 - int(idx.Int64())*8
		byteVal := smt.Extract(bitHi, bitHi-7, value)
		return smt.Concat(smt.BitVecVal(0, 248), byteVal)
	}))
}
