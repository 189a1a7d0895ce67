package modules

import (
	"github.com/laserevm/laserevm/analysis"
	"github.com/laserevm/laserevm/analysis/solverutil"
	"github.com/laserevm/laserevm/analysis/swc"
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/laser"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

// callIssue is a path-scoped fact recorded via GlobalState.Annotate: an
// external call with a possibly non-zero value happened at pc, and its
// callee may have been chosen by the caller (calleeSymbolic) rather
// than hardcoded. It rides on GlobalState.Annotations, not on any one
// Expression, because by the time a later SSTORE wants to ask "was
// there a call before me on this path", the call's own stack arguments
// are long gone.
type callIssue struct {
	pc             int
	op             disasm.OpCode
	calleeSymbolic bool
}

// ExternalCalls flags state writes that follow an external call with
// value on the same path: the classic reentrancy shape, where an
// attacker-controlled callee regains control before the caller has
// finished updating its own storage. Severity tracks whether the
// callee itself was chosen by the caller's own input (more dangerous:
// the attacker picks both the target and the reentrant code it runs)
// or was some fixed address (the attacker still needs to compromise
// that address, a narrower risk).
type ExternalCalls struct {
	Base
	Solver smt.Solver

	reported map[[2]int]bool
}

func NewExternalCalls(solver smt.Solver) *ExternalCalls {
	return &ExternalCalls{Solver: solver, reported: map[[2]int]bool{}}
}

func (m *ExternalCalls) Register(e *laser.Engine) {
	e.RegisterPreHook(disasm.CALL, func(gs *state.GlobalState) { m.recordCall(gs, disasm.CALL, 2) })
	e.RegisterPreHook(disasm.CALLCODE, func(gs *state.GlobalState) { m.recordCall(gs, disasm.CALLCODE, 2) })
	e.RegisterPreHook(disasm.DELEGATECALL, func(gs *state.GlobalState) { m.recordCall(gs, disasm.DELEGATECALL, -1) })
	e.RegisterPreHook(disasm.STATICCALL, func(gs *state.GlobalState) { m.recordCall(gs, disasm.STATICCALL, -1) })
	e.RegisterPreHook(disasm.CREATE, func(gs *state.GlobalState) { m.recordCreate(gs, disasm.CREATE) })
	e.RegisterPreHook(disasm.CREATE2, func(gs *state.GlobalState) { m.recordCreate(gs, disasm.CREATE2) })

	e.RegisterPreHook(disasm.SSTORE, func(gs *state.GlobalState) { m.checkSink(e, gs) })
	e.RegisterPreHook(disasm.CREATE, func(gs *state.GlobalState) { m.checkSink(e, gs) })
	e.RegisterPreHook(disasm.CREATE2, func(gs *state.GlobalState) { m.checkSink(e, gs) })
}

// recordCall inspects a CALL-family opcode's stack arguments before the
// handler pops them. valueDepth is the 0-indexed position of the value
// argument from the top (gas, addr, [value], ...); -1 means the opcode
// never carries a value (DELEGATECALL/STATICCALL).
func (m *ExternalCalls) recordCall(gs *state.GlobalState, op disasm.OpCode, valueDepth int) {
	addr, err := gs.Mstate.Stack.Back(1)
	if err != nil {
		return
	}

	var value *smt.BitVec
	if valueDepth >= 0 {
		value, err = gs.Mstate.Stack.Back(valueDepth)
		if err != nil {
			return
		}
	}

	if !m.valueCouldBeNonZero(gs, value) {
		return
	}

	gs.Annotate(callIssue{pc: gs.Mstate.PC, op: op, calleeSymbolic: addr.IsSymbolic()})
}

func (m *ExternalCalls) recordCreate(gs *state.GlobalState, op disasm.OpCode) {
	value, err := gs.Mstate.Stack.Back(0)
	if err != nil {
		return
	}
	if !m.valueCouldBeNonZero(gs, value) {
		return
	}
	gs.Annotate(callIssue{pc: gs.Mstate.PC, op: op, calleeSymbolic: false})
}

func (m *ExternalCalls) valueCouldBeNonZero(gs *state.GlobalState, value *smt.BitVec) bool {
	if value == nil {
		return false
	}
	if v, ok := value.Value(); ok {
		return v.Sign() != 0
	}
	_, ok := solverutil.CheckReachable(m.Solver, gs, value.Ugt(smt.BitVecVal(0, value.Size())))
	return ok
}

func (m *ExternalCalls) checkSink(e *laser.Engine, gs *state.GlobalState) {
	for _, a := range gs.Annotations {
		ci, ok := a.(callIssue)
		if !ok {
			continue
		}
		if ci.pc == gs.Mstate.PC {
			// recordCreate annotates the same instruction checkSink is
			// about to inspect when this pre-hook is CREATE/CREATE2 with
			// value; that is the call itself, not a prior one.
			continue
		}

		key := [2]int{ci.pc, gs.Mstate.PC}
		if m.reported[key] {
			continue
		}

		model, ok := solverutil.CheckReachable(m.Solver, gs)
		if !ok {
			continue
		}
		m.reported[key] = true

		severity := analysis.Low
		if ci.calleeSymbolic {
			severity = analysis.Medium
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
			SWCID:           swc.Reentrancy,
			Title:           "State Change After External Call",
			Severity:        severity,
			DescriptionHead: "Contract state is changed after an external call.",
			DescriptionTail: "The call, made with a non-zero value, could invoke attacker-controlled code that re-enters this contract before its own state update at this instruction takes effect.",
			MinGasUsed:      gs.Mstate.MinGasUsed,
			MaxGasUsed:      gs.Mstate.MaxGasUsed,
			Debug:           debug,
		})
	}
}
