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

// AssertionFailure reports every INVALID (0xFE, the compiler's lowering
// of a Solidity `assert`) reachable under the path's current
// constraints. It has nothing to negate or annotate: INVALID halts
// unconditionally, so the only question is whether this path itself is
// satisfiable.
type AssertionFailure struct {
	Base
	Solver smt.Solver
}

// NewAssertionFailure returns a module backed by solver, which may be
// shared with other modules since nothing here mutates it across calls
// (GetModel checkpoints and rolls back its own constraints).
func NewAssertionFailure(solver smt.Solver) *AssertionFailure {
	return &AssertionFailure{Solver: solver}
}

func (m *AssertionFailure) Register(e *laser.Engine) {
	e.RegisterPreHook(disasm.INVALID, func(gs *state.GlobalState) {
		m.execute(e, gs)
	})
}

func (m *AssertionFailure) execute(e *laser.Engine, gs *state.GlobalState) {
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
		SWCID:           swc.AssertViolation,
		Title:           "Assertion Violation",
		Severity:        analysis.Medium,
		DescriptionHead: "A reachable assertion failure was detected.",
		DescriptionTail: "This statement's execution was reached by a direct call or a callback from an external contract.",
		MinGasUsed:      gs.Mstate.MinGasUsed,
		MaxGasUsed:      gs.Mstate.MaxGasUsed,
		Debug:           debug,
	})
}

// nodeContext looks up the CFG node a state belongs to and returns its
// contract/function names, or empty strings if the node can't be found
// (shouldn't happen once the engine has started a phase).
func nodeContext(e *laser.Engine, gs *state.GlobalState) (contractName, functionName string) {
	n := e.Graph.Node(gs.NodeUID)
	if n == nil {
		return "", ""
	}
	return n.ContractName, n.ActiveFunctionName
}
