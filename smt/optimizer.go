package smt

import "math/big"

// Optimizable is implemented by backends that support objective-directed
// search on top of plain satisfiability.
type Optimizable interface {
	Solver
	// Minimize registers an objective the backend should minimize
	// subject to the accumulated constraints.
	Minimize(e *BitVec)
	// Maximize registers an objective the backend should maximize
	// subject to the accumulated constraints.
	Maximize(e *BitVec)
}

// ConstraintOptimizer adds Minimize/Maximize to any Solver. Unlike a
// backend with native optimization support, it finds each objective's
// extremum by binary search: satisfiability of "e >= v" is monotone
// non-increasing in v (any witness with e >= v also witnesses e >= v'
// for v' < v), so the largest feasible v can be found in O(width)
// Check calls rather than one per candidate value. Minimize mirrors
// this with "e <= v", monotone non-decreasing in v.
type ConstraintOptimizer struct {
	Solver
	results map[string]*big.Int
}

// NewConstraintOptimizer wraps s with objective search. s is used
// directly for Push/Pop/Add/Check -- this type adds no constraint-set
// bookkeeping of its own.
func NewConstraintOptimizer(s Solver) *ConstraintOptimizer {
	return &ConstraintOptimizer{Solver: s, results: map[string]*big.Int{}}
}

// Minimize computes the least value e can take under the current
// constraint set and records it for later retrieval via Objective. Only
// a failed search (a Check error) leaves no recorded value; when no bound
// query is satisfiable, the all-ones maximum of e's width is recorded.
func (o *ConstraintOptimizer) Minimize(e *BitVec) {
	if v, err := o.search(e, false); err == nil {
		o.results[e.String()] = v
	}
}

// Maximize computes the greatest value e can take under the current
// constraint set and records it for later retrieval via Objective.
func (o *ConstraintOptimizer) Maximize(e *BitVec) {
	if v, err := o.search(e, true); err == nil {
		o.results[e.String()] = v
	}
}

// Objective returns the extremum computed for e by the most recent
// Minimize/Maximize call naming it, or ok=false if e was never
// registered or its search never completed.
func (o *ConstraintOptimizer) Objective(e *BitVec) (v *big.Int, ok bool) {
	v, ok = o.results[e.String()]
	return
}

func (o *ConstraintOptimizer) search(e *BitVec, maximize bool) (*big.Int, error) {
	width := e.Size()
	lo := big.NewInt(0)
	hi := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width)), big.NewInt(1))
	best := big.NewInt(0)
	if !maximize {
		best = new(big.Int).Set(hi)
	}

	for lo.Cmp(hi) <= 0 {
		mid := new(big.Int).Rsh(new(big.Int).Add(lo, hi), 1)

		var bound *Bool
		if maximize {
			bound = e.Uge(BitVecValFromBig(mid, width))
		} else {
			bound = e.Ule(BitVecValFromBig(mid, width))
		}

		ok, err := o.feasible(bound)
		if err != nil {
			return nil, err
		}

		switch {
		case maximize && ok:
			best = mid
			lo = new(big.Int).Add(mid, big.NewInt(1))
		case maximize:
			hi = new(big.Int).Sub(mid, big.NewInt(1))
		case ok:
			best = mid
			hi = new(big.Int).Sub(mid, big.NewInt(1))
		default:
			lo = new(big.Int).Add(mid, big.NewInt(1))
		}
	}
	return best, nil
}

func (o *ConstraintOptimizer) feasible(cond *Bool) (bool, error) {
	o.Solver.Push()
	defer o.Solver.Pop(1)
	o.Solver.Add(cond)
	sat, err := o.Solver.Check()
	if err != nil {
		return false, err
	}
	return sat == Sat, nil
}
