package solverutil

import (
	"strings"
	"testing"

	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

func newPathState(constraints ...*smt.Bool) *state.GlobalState {
	gs := state.NewGlobalState(state.NewWorldState(), &state.Environment{}, state.NewMachineState())
	gs.Mstate.Constraints = constraints
	return gs
}

func TestCheckReachableSat(t *testing.T) {
	solver := smt.NewConstraintSolver()
	x := smt.BitVecSym("x", 8)
	gs := newPathState(x.Eq(smt.BitVecVal(7, 8)))

	model, ok := CheckReachable(solver, gs)
	if !ok {
		t.Fatal("CheckReachable: want ok=true")
	}
	v, bound := model.BitVecValue("x")
	if !bound || v.Int64() != 7 {
		t.Errorf("model x = %v (bound=%v), want 7", v, bound)
	}
}

func TestCheckReachableUnsat(t *testing.T) {
	solver := smt.NewConstraintSolver()
	x := smt.BitVecSym("x", 8)
	gs := newPathState(x.Eq(smt.BitVecVal(7, 8)), x.Eq(smt.BitVecVal(8, 8)))

	if _, ok := CheckReachable(solver, gs); ok {
		t.Error("CheckReachable with contradictory constraints: want ok=false")
	}
}

func TestCheckReachableWithExtraCondition(t *testing.T) {
	solver := smt.NewConstraintSolver()
	x := smt.BitVecSym("x", 8)
	gs := newPathState(x.Eq(smt.BitVecVal(7, 8)))

	if _, ok := CheckReachable(solver, gs, x.Eq(smt.BitVecVal(8, 8))); ok {
		t.Error("CheckReachable with contradictory extra condition: want ok=false")
	}
	if _, ok := CheckReachable(solver, gs, x.Eq(smt.BitVecVal(7, 8))); !ok {
		t.Error("CheckReachable with consistent extra condition: want ok=true")
	}
}

func TestCalldataByteNames(t *testing.T) {
	names := CalldataByteNames("call1", 3)
	want := []string{"calldata_call1_0", "calldata_call1_1", "calldata_call1_2"}
	if len(names) != len(want) {
		t.Fatalf("len(names) = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestTransactionSequence(t *testing.T) {
	solver := smt.NewConstraintSolver()
	a := smt.BitVecSym("calldata_call1_1", 8)
	b := smt.BitVecSym("calldata_call1_0", 8)
	gs := newPathState(a.Eq(smt.BitVecVal(0xaa, 8)), b.Eq(smt.BitVecVal(0xbb, 8)))

	model, ok := CheckReachable(solver, gs)
	if !ok {
		t.Fatal("CheckReachable: want ok=true")
	}

	out := TransactionSequence(model, CalldataByteNames("call1", 2))
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("TransactionSequence lines = %v, want 2 lines", lines)
	}
	if lines[0] != "calldata_call1_0 = 0xbb" {
		t.Errorf("lines[0] = %q, want sorted-by-name first (calldata_call1_0)", lines[0])
	}
	if lines[1] != "calldata_call1_1 = 0xaa" {
		t.Errorf("lines[1] = %q, want calldata_call1_1", lines[1])
	}
}

func TestTransactionSequenceOmitsUnbound(t *testing.T) {
	model, _ := smt.GetModel(smt.NewConstraintSolver())
	out := TransactionSequence(model, []string{"never_bound"})
	if out != "" {
		t.Errorf("TransactionSequence with no bound names = %q, want empty", out)
	}
}
