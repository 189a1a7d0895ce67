// Package solverutil gives detection modules a small, shared vocabulary
// for turning a GlobalState's path constraints into a witness: is some
// additional condition reachable, and if so, what did the solver pick
// for the variables we care about.
package solverutil

import (
	"fmt"
	"sort"
	"strings"

	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

// CheckReachable checks gs's accumulated path constraints together with
// any extra conditions a module wants to test (e.g. the negation of an
// overflow predicate), returning a witness model on success. Unsat and
// Unknown are both reported as ok=false: neither produces a witness, and
// a detection module must never emit an issue without one.
func CheckReachable(solver smt.Solver, gs *state.GlobalState, extra ...*smt.Bool) (*smt.Model, bool) {
	constraints := make([]*smt.Bool, 0, len(gs.Mstate.Constraints)+len(extra))
	constraints = append(constraints, gs.Mstate.Constraints...)
	constraints = append(constraints, extra...)
	model, err := smt.GetModel(solver, constraints...)
	if err != nil {
		return nil, false
	}
	return model, true
}

// TransactionSequence renders a model's bindings for a set of named
// bit-vector variables into a short, deterministic witness string, one
// `name = value` pair per line sorted by name. Unbound names (the
// solver never had to pin a value for them) are omitted.
func TransactionSequence(model *smt.Model, names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var lines []string
	for _, name := range sorted {
		if v, ok := model.BitVecValue(name); ok {
			lines = append(lines, fmt.Sprintf("%s = 0x%x", name, v))
			continue
		}
		if v, ok := model.BoolValue(name); ok {
			lines = append(lines, fmt.Sprintf("%s = %t", name, v))
		}
	}
	return strings.Join(lines, "\n")
}

// CalldataByteNames returns the symbolic variable names CALLDATALOAD/
// CALLDATACOPY would have created for the first n bytes of the named
// transaction's calldata, matching state.Calldata.ByteAt's naming
// scheme -- the set a module asks the solver to bind when it wants a
// witness referencing calldata contents.
func CalldataByteNames(txID string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf("calldata_%s_%d", txID, i)
	}
	return out
}
