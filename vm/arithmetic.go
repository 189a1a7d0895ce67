package vm

import (
	"math/big"

	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

// binaryArith pops the top two stack items -- top first, second below it
// -- applies apply(top, second), and pushes the result. EVM operand
// order matters for non-commutative ops (SUB computes top-second, DIV
// computes top/second): apply always receives them in that order.
func binaryArith(apply func(top, second *smt.BitVec) *smt.BitVec) executionFunc {
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
		if err := next.Mstate.Stack.Push(apply(top, second)); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	}
}

func unaryArith(apply func(a *smt.BitVec) *smt.BitVec) executionFunc {
	return func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		a, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		if err := next.Mstate.Stack.Push(apply(a)); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	}
}

func (e *Evaluator) installArithmetic() {
	e.register(disasm.ADD, binaryArith(func(top, second *smt.BitVec) *smt.BitVec { return top.Add(second) }))
	e.register(disasm.MUL, binaryArith(func(top, second *smt.BitVec) *smt.BitVec { return top.Mul(second) }))
	e.register(disasm.SUB, binaryArith(func(top, second *smt.BitVec) *smt.BitVec { return top.Sub(second) }))
	e.register(disasm.DIV, binaryArith(func(top, second *smt.BitVec) *smt.BitVec { return top.UDiv(second) }))
	e.register(disasm.SDIV, binaryArith(func(top, second *smt.BitVec) *smt.BitVec { return top.SDiv(second) }))
	e.register(disasm.MOD, binaryArith(func(top, second *smt.BitVec) *smt.BitVec { return top.URem(second) }))
	e.register(disasm.SMOD, binaryArith(func(top, second *smt.BitVec) *smt.BitVec { return top.SMod(second) }))

	e.register(disasm.ADDMOD, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		a, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		b, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		n, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		sum := a.Add(b)
		result := smt.Ite(n.Eq(smt.BitVecVal(0, 256)), smt.BitVecVal(0, 256), sum.URem(n))
		if err := next.Mstate.Stack.Push(result); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.MULMOD, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		a, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		b, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		n, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		prod := a.Mul(b)
		result := smt.Ite(n.Eq(smt.BitVecVal(0, 256)), smt.BitVecVal(0, 256), prod.URem(n))
		if err := next.Mstate.Stack.Push(result); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	// EXP has no closed-form bit-vector encoding; when both operands are
	// concrete we unroll it directly, otherwise the result is a fresh
	// symbol pinned at the one special case detectors rely on (x**0 == 1).
	e.register(disasm.EXP, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		base, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		exponent, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		result := expBitVec(base, exponent)
		if err := next.Mstate.Stack.Push(result); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})

	e.register(disasm.SIGNEXTEND, func(e *Evaluator, gs *state.GlobalState) (Step, error) {
		next := gs.Copy()
		byteIdx, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		value, err := next.Mstate.Stack.Pop()
		if err != nil {
			return nil, err
		}
		result := signExtend(byteIdx, value)
		if err := next.Mstate.Stack.Push(result); err != nil {
			return nil, err
		}
		next.Mstate.PC++
		next.Mstate.Depth++
		return Continue{States: []*state.GlobalState{next}}, nil
	})
}

// expBitVec computes base**exponent mod 2^256 when both are concrete;
// the symbolic case is approximated by a fresh value, named after the two
// operands, pinned at the EVM special case x**0 == 1 (0**y is not pinned).
func expBitVec(base, exponent *smt.BitVec) *smt.BitVec {
	bv, bok := base.Value()
	ev, eok := exponent.Value()
	if bok && eok {
		modulus := new(big.Int).Lsh(big.NewInt(1), 256)
		result := new(big.Int).Exp(bv, ev, modulus)
		return smt.BitVecValFromBig(result, 256)
	}
	fresh := smt.BitVecSym("exp("+base.String()+","+exponent.String()+")", 256)
	return smt.Ite(exponent.Eq(smt.BitVecVal(0, 256)), smt.BitVecVal(1, 256), fresh)
}

// signExtend implements EVM SIGNEXTEND: sign-extend value treating byte
// index `byteIdx` (0 = least significant byte) as the sign bit position.
func signExtend(byteIdx, value *smt.BitVec) *smt.BitVec {
	idx, ok := byteIdx.Value()
	if !ok || idx.Sign() < 0 || idx.Int64() >= 32 {
		return value
	}
	bitPos := int(idx.Int64())*8 + 7
	signBit := smt.Extract(bitPos, bitPos, value)
	allOnes := smt.BitVecVal(-1, 256)
	zeros := smt.BitVecVal(0, 256)
	mask := smt.Ite(signBit.Eq(smt.BitVecVal(1, 1)), allOnes, zeros)
	keepBits := bitPos + 1
	if keepBits >= 256 {
		return value
	}
	low := smt.Extract(keepBits-1, 0, value)
	highMask := smt.Extract(255, keepBits, mask)
	return smt.Concat(highMask, low)
}
