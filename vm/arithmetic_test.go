package vm

import (
	"testing"

	types "github.com/laserevm/laserevm/internal/evmtypes"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

func newTestState(t *testing.T, stack ...*smt.BitVec) *state.GlobalState {
	t.Helper()
	acct := state.NewAccount(types.HexToAddress("0x01"))
	acct.SetCode([]byte{0x01}) // ADD: Execute dispatches on the byte at PC 0

	mstate := state.NewMachineState()
	for _, v := range stack {
		if err := mstate.Stack.Push(v); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	env := &state.Environment{Active: acct}
	return state.NewGlobalState(state.NewWorldState(), env, mstate)
}

func execOne(t *testing.T, e *Evaluator, gs *state.GlobalState) *state.GlobalState {
	t.Helper()
	step, err := e.Execute(gs)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	cont, ok := step.(Continue)
	if !ok || len(cont.States) != 1 {
		t.Fatalf("Execute step = %#v, want single Continue", step)
	}
	return cont.States[0]
}

func TestAddConcrete(t *testing.T) {
	e := NewEvaluator(nil, false)
	gs := newTestState(t, smt.BitVecVal(3, 256), smt.BitVecVal(5, 256))

	out := execOne(t, e, gs)
	top, err := out.Mstate.Stack.Peek()
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	v, ok := top.Value()
	if !ok || v.Int64() != 8 {
		t.Errorf("3 + 5 = %v (ok=%v), want 8", v, ok)
	}
}

func TestSubOperandOrder(t *testing.T) {
	// SUB computes top - second: stack is [.., second=3, top=10], so
	// the pushed operand order for "10 SUB 3" is push 3, push 10.
	acct := state.NewAccount(types.HexToAddress("0x01"))
	acct.SetCode([]byte{0x03}) // SUB
	mstate := state.NewMachineState()
	mstate.Stack.Push(smt.BitVecVal(3, 256))
	mstate.Stack.Push(smt.BitVecVal(10, 256))
	gs := state.NewGlobalState(state.NewWorldState(), &state.Environment{Active: acct}, mstate)

	e := NewEvaluator(nil, false)
	out := execOne(t, e, gs)
	top, _ := out.Mstate.Stack.Peek()
	v, ok := top.Value()
	if !ok || v.Int64() != 7 {
		t.Errorf("10 - 3 = %v (ok=%v), want 7", v, ok)
	}
}

func TestAddDoesNotMutateInput(t *testing.T) {
	e := NewEvaluator(nil, false)
	gs := newTestState(t, smt.BitVecVal(3, 256), smt.BitVecVal(5, 256))

	execOne(t, e, gs)
	if gs.Mstate.Stack.Len() != 2 {
		t.Errorf("input stack Len() = %d, want 2 (unmutated)", gs.Mstate.Stack.Len())
	}
}

func TestExpConcrete(t *testing.T) {
	if v := expBitVec(smt.BitVecVal(2, 256), smt.BitVecVal(10, 256)); true {
		got, ok := v.Value()
		if !ok || got.Int64() != 1024 {
			t.Errorf("2**10 = %v (ok=%v), want 1024", got, ok)
		}
	}
}

func TestExpZeroExponentSymbolicBase(t *testing.T) {
	base := smt.BitVecSym("x", 256)
	result := expBitVec(base, smt.BitVecVal(0, 256))
	v, ok := result.Value()
	if !ok || v.Int64() != 1 {
		t.Errorf("x**0 = %v (ok=%v), want 1", v, ok)
	}
}

func TestSignExtendNegative(t *testing.T) {
	// SIGNEXTEND(0, 0xff) sign-extends a single byte whose top bit is
	// set, producing all-ones.
	result := signExtend(smt.BitVecVal(0, 256), smt.BitVecVal(0xff, 256))
	v, ok := result.Value()
	if !ok {
		t.Fatal("signExtend result has no concrete value")
	}
	want := smt.BitVecVal(-1, 256)
	wv, _ := want.Value()
	if v.Cmp(wv) != 0 {
		t.Errorf("signExtend(0, 0xff) = %s, want %s (all-ones)", v, wv)
	}
}

func TestSignExtendPositive(t *testing.T) {
	// SIGNEXTEND(0, 0x7f) has sign bit clear, value unchanged.
	result := signExtend(smt.BitVecVal(0, 256), smt.BitVecVal(0x7f, 256))
	v, ok := result.Value()
	if !ok || v.Int64() != 0x7f {
		t.Errorf("signExtend(0, 0x7f) = %v (ok=%v), want 0x7f", v, ok)
	}
}
