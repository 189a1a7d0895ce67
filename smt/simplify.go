package smt

import "math/big"

var one = big.NewInt(1)

// mask2 returns 2^width.
func mask2(width int) *big.Int {
	return new(big.Int).Lsh(one, uint(width))
}

// umod normalizes v into [0, 2^width).
func umod(v *big.Int, width int) *big.Int {
	m := mask2(width)
	r := new(big.Int).Mod(v, m)
	if r.Sign() < 0 {
		r.Add(r, m)
	}
	return r
}

// toSigned reinterprets an unsigned [0, 2^width) value as two's complement.
func toSigned(v *big.Int, width int) *big.Int {
	half := new(big.Int).Lsh(one, uint(width-1))
	if v.Cmp(half) >= 0 {
		return new(big.Int).Sub(v, mask2(width))
	}
	return new(big.Int).Set(v)
}

// simplify performs local constant folding. It is the mechanism behind
// BitVec.IsSymbolic: a term built from only concrete operands always
// folds down to a bvConst/boolConst here, so "is this symbolic" never has
// to special-case arithmetic that happens to cancel out (e.g. x - x).
func simplify(t term) term {
	switch v := t.(type) {
	case *bvConst, *boolConst:
		return v
	case *bvSym, *boolSym:
		return v
	case *bvNot:
		a := simplify(v.a)
		if c, ok := a.(*bvConst); ok {
			neg := new(big.Int).Not(c.val)
			return &bvConst{width: v.width, val: umod(neg, v.width)}
		}
		return &bvNot{width: v.width, a: a}
	case *bvBin:
		a := simplify(v.a)
		b := simplify(v.b)
		ac, aok := a.(*bvConst)
		bc, bok := b.(*bvConst)
		if aok && bok {
			if r, ok := foldBVBin(v.op, ac.val, bc.val, v.width); ok {
				return &bvConst{width: v.width, val: r}
			}
		}
		return &bvBin{op: v.op, width: v.width, a: a, b: b}
	case *bvExtract:
		a := simplify(v.a)
		if c, ok := a.(*bvConst); ok {
			shifted := new(big.Int).Rsh(c.val, uint(v.lo))
			return &bvConst{width: v.hi - v.lo + 1, val: umod(shifted, v.hi-v.lo+1)}
		}
		return &bvExtract{hi: v.hi, lo: v.lo, a: a}
	case *bvConcat:
		args := make([]term, len(v.args))
		allConst := true
		for i, a := range v.args {
			args[i] = simplify(a)
			if _, ok := args[i].(*bvConst); !ok {
				allConst = false
			}
		}
		if allConst {
			acc := new(big.Int)
			width := 0
			for _, a := range args {
				c := a.(*bvConst)
				acc.Lsh(acc, uint(c.width))
				acc.Or(acc, c.val)
				width += c.width
			}
			return &bvConst{width: width, val: acc}
		}
		return &bvConcat{args: args}
	case *bvIte:
		cond := simplify(v.cond)
		if cc, ok := cond.(*boolConst); ok {
			if cc.val {
				return simplify(v.t)
			}
			return simplify(v.f)
		}
		return &bvIte{width: v.width, cond: cond, t: simplify(v.t), f: simplify(v.f)}
	case *boolNot:
		a := simplify(v.a)
		if c, ok := a.(*boolConst); ok {
			return &boolConst{val: !c.val}
		}
		return &boolNot{a: a}
	case *boolBin:
		a := simplify(v.a)
		b := simplify(v.b)
		ac, aok := a.(*boolConst)
		bc, bok := b.(*boolConst)
		if aok && bok {
			if v.and {
				return &boolConst{val: ac.val && bc.val}
			}
			return &boolConst{val: ac.val || bc.val}
		}
		// Short-circuit when only one side is concrete and decisive.
		if aok {
			if v.and && !ac.val {
				return &boolConst{val: false}
			}
			if !v.and && ac.val {
				return &boolConst{val: true}
			}
		}
		if bok {
			if v.and && !bc.val {
				return &boolConst{val: false}
			}
			if !v.and && bc.val {
				return &boolConst{val: true}
			}
		}
		return &boolBin{and: v.and, a: a, b: b}
	case *boolCmp:
		a := simplify(v.a)
		b := simplify(v.b)
		ac, aok := a.(*bvConst)
		bc, bok := b.(*bvConst)
		if aok && bok {
			width := a.sort()
			return &boolConst{val: foldCmp(v.op, ac.val, bc.val, width)}
		}
		return &boolCmp{op: v.op, a: a, b: b}
	default:
		return t
	}
}

// foldBVBin evaluates a binary bit-vector op on two concrete operands,
// per EVM semantics: division and remainder by zero yield zero rather
// than an error, matching the boundary case in the spec.
func foldBVBin(op opKind, a, b *big.Int, width int) (*big.Int, bool) {
	switch op {
	case opAdd:
		return umod(new(big.Int).Add(a, b), width), true
	case opSub:
		return umod(new(big.Int).Sub(a, b), width), true
	case opMul:
		return umod(new(big.Int).Mul(a, b), width), true
	case opUDiv:
		if b.Sign() == 0 {
			return big.NewInt(0), true
		}
		return umod(new(big.Int).Div(a, b), width), true
	case opURem:
		if b.Sign() == 0 {
			return big.NewInt(0), true
		}
		return umod(new(big.Int).Mod(a, b), width), true
	case opSDiv:
		if b.Sign() == 0 {
			return big.NewInt(0), true
		}
		sa, sb := toSigned(a, width), toSigned(b, width)
		q := new(big.Int).Quo(sa, sb)
		return umod(q, width), true
	case opSMod, opSRem:
		if b.Sign() == 0 {
			return big.NewInt(0), true
		}
		sa, sb := toSigned(a, width), toSigned(b, width)
		r := new(big.Int).Rem(sa, sb)
		return umod(r, width), true
	case opAnd:
		return umod(new(big.Int).And(a, b), width), true
	case opOr:
		return umod(new(big.Int).Or(a, b), width), true
	case opXor:
		return umod(new(big.Int).Xor(a, b), width), true
	case opShl:
		if b.Cmp(big.NewInt(int64(width))) >= 0 {
			return big.NewInt(0), true
		}
		return umod(new(big.Int).Lsh(a, uint(b.Uint64())), width), true
	case opShr:
		if b.Cmp(big.NewInt(int64(width))) >= 0 {
			return big.NewInt(0), true
		}
		return umod(new(big.Int).Rsh(a, uint(b.Uint64())), width), true
	case opSar:
		sa := toSigned(a, width)
		if b.Cmp(big.NewInt(int64(width))) >= 0 {
			if sa.Sign() < 0 {
				return umod(big.NewInt(-1), width), true
			}
			return big.NewInt(0), true
		}
		return umod(new(big.Int).Rsh(sa, uint(b.Uint64())), width), true
	default:
		return nil, false
	}
}

// foldCmp evaluates a comparison/predicate op on two concrete operands.
func foldCmp(op opKind, a, b *big.Int, width int) bool {
	switch op {
	case opEq:
		return a.Cmp(b) == 0
	case opNe:
		return a.Cmp(b) != 0
	case opUlt:
		return a.Cmp(b) < 0
	case opUgt:
		return a.Cmp(b) > 0
	case opUle:
		return a.Cmp(b) <= 0
	case opUge:
		return a.Cmp(b) >= 0
	case opLt:
		return toSigned(a, width).Cmp(toSigned(b, width)) < 0
	case opGt:
		return toSigned(a, width).Cmp(toSigned(b, width)) > 0
	case opSle:
		return toSigned(a, width).Cmp(toSigned(b, width)) <= 0
	case opSge:
		return toSigned(a, width).Cmp(toSigned(b, width)) >= 0
	case opAddNoOverflow:
		sum := new(big.Int).Add(a, b)
		return sum.Cmp(mask2(width)) < 0
	case opMulNoOverflow:
		prod := new(big.Int).Mul(a, b)
		return prod.Cmp(mask2(width)) < 0
	case opSubNoUnderflow:
		return a.Cmp(b) >= 0
	default:
		return false
	}
}
