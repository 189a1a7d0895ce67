package modules

import (
	"fmt"

	"github.com/laserevm/laserevm/analysis"
	"github.com/laserevm/laserevm/analysis/solverutil"
	"github.com/laserevm/laserevm/analysis/swc"
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/laser"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

// overflowTaint is attached to a BitVec's own annotation list when an
// arithmetic op that produced it could have overflowed or underflowed on
// this path. Expression annotations survive further arithmetic (each
// binary op unions its operands' annotations), so the taint rides along
// with the value until something actually consumes it.
type overflowTaint struct {
	op disasm.OpCode
	pc int
}

// IntegerArithmetic flags ADD/MUL/SUB results that could have
// wrapped, then watches SSTORE and JUMPI for a tainted value actually
// being persisted or branched on. Mythril calls this pattern "taint and
// watch": the arithmetic site alone proves nothing (the result might be
// discarded or only ever compared against a SafeMath-style guard later
// in the same path, in which case the later branch is unreachable and
// the detector's own witness check on the consuming instruction will
// fail to confirm it), so only a later sink turns it into a reported
// issue.
type IntegerArithmetic struct {
	Base
	Solver smt.Solver
}

func NewIntegerArithmetic(solver smt.Solver) *IntegerArithmetic {
	return &IntegerArithmetic{Solver: solver}
}

func (m *IntegerArithmetic) Register(e *laser.Engine) {
	e.RegisterPreHook(disasm.ADD, func(gs *state.GlobalState) { m.taintBinary(gs, disasm.ADD) })
	e.RegisterPreHook(disasm.MUL, func(gs *state.GlobalState) { m.taintBinary(gs, disasm.MUL) })
	e.RegisterPreHook(disasm.SUB, func(gs *state.GlobalState) { m.taintBinary(gs, disasm.SUB) })
	e.RegisterPreHook(disasm.SSTORE, func(gs *state.GlobalState) { m.checkSink(e, gs) })
	e.RegisterPreHook(disasm.JUMPI, func(gs *state.GlobalState) { m.checkBranch(e, gs) })
}

func (m *IntegerArithmetic) taintBinary(gs *state.GlobalState, op disasm.OpCode) {
	top, err := gs.Mstate.Stack.Back(0)
	if err != nil {
		return
	}
	second, err := gs.Mstate.Stack.Back(1)
	if err != nil {
		return
	}

	var violated *smt.Bool
	switch op {
	case disasm.ADD:
		violated = smt.Not(smt.BVAddNoOverflow(top, second, false))
	case disasm.MUL:
		violated = smt.Not(smt.BVMulNoOverflow(top, second, false))
	case disasm.SUB:
		violated = smt.Not(smt.BVSubNoUnderflow(top, second, false))
	default:
		return
	}

	if _, ok := solverutil.CheckReachable(m.Solver, gs, violated); !ok {
		return
	}

	taint := overflowTaint{op: op, pc: gs.Mstate.PC}
	top.Annotate(taint)
	second.Annotate(taint)
}

func (m *IntegerArithmetic) checkSink(e *laser.Engine, gs *state.GlobalState) {
	key, err := gs.Mstate.Stack.Back(0)
	if err != nil {
		return
	}
	value, err := gs.Mstate.Stack.Back(1)
	if err != nil {
		return
	}

	taint := findTaint(value)
	if taint == nil {
		taint = findTaint(key)
	}
	if taint == nil {
		return
	}

	m.reportTaint(e, gs, taint, "is stored into contract state",
		"reaches storage without an intervening bounds check")
}

// checkBranch watches JUMPI: if the branch condition still carries a
// prior overflow/underflow taint, the jump decision itself depends on
// unvalidated arithmetic. Stack.Back(0) is the jump destination;
// Back(1) is the condition being tested.
func (m *IntegerArithmetic) checkBranch(e *laser.Engine, gs *state.GlobalState) {
	cond, err := gs.Mstate.Stack.Back(1)
	if err != nil {
		return
	}

	taint := findTaint(cond)
	if taint == nil {
		return
	}

	m.reportTaint(e, gs, taint, "controls a conditional jump",
		"reaches a branch condition without an intervening bounds check")
}

func (m *IntegerArithmetic) reportTaint(e *laser.Engine, gs *state.GlobalState, taint *overflowTaint, headVerb, tailVerb string) {
	model, ok := solverutil.CheckReachable(m.Solver, gs)
	if !ok {
		return
	}

	contractName, functionName := nodeContext(e, gs)
	var debug string
	if tx := gs.CurrentTransaction(); tx != nil {
		debug = solverutil.TransactionSequence(model, solverutil.CalldataByteNames(tx.ID(), 32))
	}

	m.report(analysis.Issue{
		ContractName:    contractName,
		FunctionName:    functionName,
		Address:         gs.Mstate.PC,
		SWCID:           swc.IntegerOverflowAndUnderflow,
		Title:           "Integer Arithmetic Bug",
		Severity:        analysis.High,
		DescriptionHead: fmt.Sprintf("A possible %s at instruction %d %s.", taint.op, taint.pc, headVerb),
		DescriptionTail: fmt.Sprintf("This instruction's arithmetic can overflow or underflow, and the result %s.", tailVerb),
		MinGasUsed:      gs.Mstate.MinGasUsed,
		MaxGasUsed:      gs.Mstate.MaxGasUsed,
		Debug:           debug,
	})
}

func findTaint(v *smt.BitVec) *overflowTaint {
	for _, a := range v.Annotations() {
		if t, ok := a.(overflowTaint); ok {
			return &t
		}
	}
	return nil
}
