package smt

import "time"

// dependenceBucket groups constraints that share at least one free
// variable, transitively.
type dependenceBucket struct {
	variables   map[string]bool
	expressions []*Bool
}

// splitIndependent partitions constraints into buckets such that no two
// constraints in different buckets share a free variable. Each bucket
// can then be checked against a solver independently: satisfiability of
// the whole set is the conjunction of the per-bucket results, since
// nothing in one bucket can interact with another.
func splitIndependent(constraints []*Bool) []*dependenceBucket {
	var buckets []*dependenceBucket
	varOwner := map[string]*dependenceBucket{}

	for _, constraint := range constraints {
		vars := freeVariables(constraint.t)
		var merged []*dependenceBucket
		for v := range vars {
			if b, ok := varOwner[v]; ok {
				merged = append(merged, b)
			}
		}

		bucket := &dependenceBucket{variables: vars, expressions: []*Bool{constraint}}
		buckets = append(buckets, bucket)

		if len(merged) > 0 {
			merged = append(merged, bucket)
			bucket = mergeBuckets(&buckets, merged)
		}
		for v := range bucket.variables {
			varOwner[v] = bucket
		}
	}
	return buckets
}

func mergeBuckets(all *[]*dependenceBucket, toMerge []*dependenceBucket) *dependenceBucket {
	merged := &dependenceBucket{variables: map[string]bool{}}
	mergedSet := map[*dependenceBucket]bool{}
	for _, b := range toMerge {
		mergedSet[b] = true
		for v := range b.variables {
			merged.variables[v] = true
		}
		merged.expressions = append(merged.expressions, b.expressions...)
	}
	kept := (*all)[:0]
	for _, b := range *all {
		if !mergedSet[b] {
			kept = append(kept, b)
		}
	}
	*all = append(kept, merged)
	return merged
}

// freeVariables collects the names of every symbolic leaf in a term.
func freeVariables(t term) map[string]bool {
	out := map[string]bool{}
	collectFreeVariables(t, out)
	return out
}

func collectFreeVariables(t term, out map[string]bool) {
	switch v := t.(type) {
	case *bvSym:
		out[v.name] = true
	case *boolSym:
		out[v.name] = true
	case *bvBin:
		collectFreeVariables(v.a, out)
		collectFreeVariables(v.b, out)
	case *bvNot:
		collectFreeVariables(v.a, out)
	case *bvExtract:
		collectFreeVariables(v.a, out)
	case *bvConcat:
		for _, a := range v.args {
			collectFreeVariables(a, out)
		}
	case *bvIte:
		collectFreeVariables(v.cond, out)
		collectFreeVariables(v.t, out)
		collectFreeVariables(v.f, out)
	case *boolCmp:
		collectFreeVariables(v.a, out)
		collectFreeVariables(v.b, out)
	case *boolNot:
		collectFreeVariables(v.a, out)
	case *boolBin:
		collectFreeVariables(v.a, out)
		collectFreeVariables(v.b, out)
	}
}

// IndependenceSolver wraps a Solver factory and checks satisfiability
// bucket-by-bucket: constraints that share no free variables are
// independent and can be solved in isolation, which keeps each
// individual call small instead of handing one large conjunction to the
// backend. The first bucket to report Unsat or Unknown decides the
// overall result; a witness is only assembled once every bucket is Sat.
type IndependenceSolver struct {
	newSolver   func() Solver
	constraints []*Bool
	checkpoints []int
	timeout     time.Duration
	lastModel   *Model
}

// NewIndependenceSolver builds a bucket-splitting solver. newSolver is
// called once per independent bucket per Check, so it should be cheap
// (e.g. wrapping NewConstraintSolver).
func NewIndependenceSolver(newSolver func() Solver) *IndependenceSolver {
	return &IndependenceSolver{newSolver: newSolver}
}

func (s *IndependenceSolver) SetTimeout(d time.Duration) { s.timeout = d }

func (s *IndependenceSolver) Add(constraints ...*Bool) {
	s.constraints = append(s.constraints, constraints...)
}

func (s *IndependenceSolver) Push() {
	s.checkpoints = append(s.checkpoints, len(s.constraints))
}

func (s *IndependenceSolver) Pop(n int) {
	for i := 0; i < n && len(s.checkpoints) > 0; i++ {
		last := s.checkpoints[len(s.checkpoints)-1]
		s.checkpoints = s.checkpoints[:len(s.checkpoints)-1]
		s.constraints = s.constraints[:last]
	}
}

func (s *IndependenceSolver) Reset() {
	s.constraints = nil
	s.checkpoints = nil
}

func (s *IndependenceSolver) Check() (Satisfiability, error) {
	buckets := splitIndependent(s.constraints)
	s.lastModel = newModel()
	for _, bucket := range buckets {
		backend := s.newSolver()
		backend.SetTimeout(s.timeout)
		backend.Add(bucket.expressions...)
		result, err := backend.Check()
		if err != nil {
			return Unknown, err
		}
		if result != Sat {
			return result, nil
		}
		model, err := backend.Model()
		if err != nil {
			return Unknown, err
		}
		for k, v := range model.bitvecs {
			s.lastModel.bitvecs[k] = v
		}
		for k, v := range model.bools {
			s.lastModel.bools[k] = v
		}
	}
	return Sat, nil
}

func (s *IndependenceSolver) Model() (*Model, error) {
	if s.lastModel == nil {
		return newModel(), nil
	}
	return s.lastModel, nil
}
