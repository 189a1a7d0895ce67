package smt

import (
	"math/big"
	"time"
)

// ConstraintSolver is a native, dependency-free Solver implementation. It
// is not a complete decision procedure -- it only resolves constraint
// sets that boil down to direct variable/constant equalities once
// simplified, which is exactly the shape produced by the concrete and
// mostly-concrete paths the engine spends most of its time on (a
// concrete JUMPI condition, a calldata byte pinned by a prior check). A
// full theory has to fall back on Unknown, which detection code treats
// the same as Unsat: no witness, no issue. It exists so the engine and
// its tests can run without a CGO or external SMT dependency; a more
// complete decision procedure can be wired in behind the same Solver
// interface without any change above this package.
type ConstraintSolver struct {
	constraints []*Bool
	checkpoints []int
	timeout     time.Duration
	lastModel   *Model
}

// NewConstraintSolver constructs an empty native solver.
func NewConstraintSolver() *ConstraintSolver {
	return &ConstraintSolver{}
}

func (c *ConstraintSolver) SetTimeout(d time.Duration) { c.timeout = d }

func (c *ConstraintSolver) Add(constraints ...*Bool) {
	c.constraints = append(c.constraints, constraints...)
}

func (c *ConstraintSolver) Push() {
	c.checkpoints = append(c.checkpoints, len(c.constraints))
}

func (c *ConstraintSolver) Pop(n int) {
	for i := 0; i < n && len(c.checkpoints) > 0; i++ {
		last := c.checkpoints[len(c.checkpoints)-1]
		c.checkpoints = c.checkpoints[:len(c.checkpoints)-1]
		c.constraints = c.constraints[:last]
	}
}

func (c *ConstraintSolver) Reset() {
	c.constraints = nil
	c.checkpoints = nil
	c.lastModel = nil
}

// Check implements the bounded equality-propagation procedure described
// on ConstraintSolver.
func (c *ConstraintSolver) Check() (Satisfiability, error) {
	bvBindings := map[string]*big.Int{}
	boolBindings := map[string]bool{}

	// First pass: collect direct var==const bindings (and their negations
	// for booleans), detecting immediate contradictions.
	pending := make([]term, len(c.constraints))
	for i, constraint := range c.constraints {
		pending[i] = simplify(constraint.t)
	}

	changed := true
	for changed {
		changed = false
		for i, t := range pending {
			t = substitute(t, bvBindings, boolBindings)
			t = simplify(t)
			pending[i] = t

			if bc, ok := t.(*boolConst); ok {
				if !bc.val {
					return Unsat, nil
				}
				continue
			}
			if bound, ok := bindingFrom(t); ok {
				switch binding := bound.(type) {
				case bvBinding:
					if existing, has := bvBindings[binding.name]; has {
						if existing.Cmp(binding.val) != 0 {
							return Unsat, nil
						}
					} else {
						bvBindings[binding.name] = binding.val
						changed = true
					}
				case boolBinding:
					if existing, has := boolBindings[binding.name]; has {
						if existing != binding.val {
							return Unsat, nil
						}
					} else {
						boolBindings[binding.name] = binding.val
						changed = true
					}
				}
			}
		}
	}

	allResolved := true
	for _, t := range pending {
		if _, ok := t.(*boolConst); !ok {
			allResolved = false
			break
		}
	}

	model := newModel()
	for k, v := range bvBindings {
		model.bitvecs[k] = v
	}
	for k, v := range boolBindings {
		model.bools[k] = v
	}
	c.lastModel = model

	if allResolved {
		return Sat, nil
	}
	return Unknown, nil
}

func (c *ConstraintSolver) Model() (*Model, error) {
	if c.lastModel == nil {
		return newModel(), nil
	}
	return c.lastModel, nil
}

type bvBinding struct {
	name string
	val  *big.Int
}

type boolBinding struct {
	name string
	val  bool
}

// bindingFrom recognizes the shape `sym == const` (or its reverse) and
// plain/negated boolean symbols, extracting a variable binding.
func bindingFrom(t term) (any, bool) {
	switch v := t.(type) {
	case *boolCmp:
		if v.op != opEq {
			return nil, false
		}
		if sym, ok := v.a.(*bvSym); ok {
			if c, ok := v.b.(*bvConst); ok {
				return bvBinding{name: sym.name, val: c.val}, true
			}
		}
		if sym, ok := v.b.(*bvSym); ok {
			if c, ok := v.a.(*bvConst); ok {
				return bvBinding{name: sym.name, val: c.val}, true
			}
		}
	case *boolSym:
		return boolBinding{name: v.name, val: true}, true
	case *boolNot:
		if sym, ok := v.a.(*boolSym); ok {
			return boolBinding{name: sym.name, val: false}, true
		}
	}
	return nil, false
}

// substitute replaces bound variables with their concrete values throughout a term tree.
func substitute(t term, bv map[string]*big.Int, bl map[string]bool) term {
	switch v := t.(type) {
	case *bvSym:
		if val, ok := bv[v.name]; ok {
			return &bvConst{width: v.width, val: val}
		}
		return v
	case *boolSym:
		if val, ok := bl[v.name]; ok {
			return &boolConst{val: val}
		}
		return v
	case *bvConst, *boolConst:
		return v
	case *bvBin:
		return &bvBin{op: v.op, width: v.width, a: substitute(v.a, bv, bl), b: substitute(v.b, bv, bl)}
	case *bvNot:
		return &bvNot{width: v.width, a: substitute(v.a, bv, bl)}
	case *bvExtract:
		return &bvExtract{hi: v.hi, lo: v.lo, a: substitute(v.a, bv, bl)}
	case *bvConcat:
		args := make([]term, len(v.args))
		for i, a := range v.args {
			args[i] = substitute(a, bv, bl)
		}
		return &bvConcat{args: args}
	case *bvIte:
		return &bvIte{width: v.width, cond: substitute(v.cond, bv, bl), t: substitute(v.t, bv, bl), f: substitute(v.f, bv, bl)}
	case *boolCmp:
		return &boolCmp{op: v.op, a: substitute(v.a, bv, bl), b: substitute(v.b, bv, bl)}
	case *boolNot:
		return &boolNot{a: substitute(v.a, bv, bl)}
	case *boolBin:
		return &boolBin{and: v.and, a: substitute(v.a, bv, bl), b: substitute(v.b, bv, bl)}
	default:
		return t
	}
}
