package laser

import (
	"time"

	"github.com/laserevm/laserevm/cfg"
	types "github.com/laserevm/laserevm/internal/evmtypes"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
	"github.com/laserevm/laserevm/transaction"
	"github.com/laserevm/laserevm/vm"
)

// RunCreation executes a single contract-creation transaction to
// completion and returns the world states reached by every path that
// halted without reverting. These become the OpenStates a following
// message-call phase resumes from.
func (e *Engine) RunCreation(tx *transaction.ContractCreation, contractName string) []*state.WorldState {
	initial := tx.InitialState(state.NewWorldState())
	n := e.Graph.NewNode(contractName)
	n.Flags |= cfg.FuncEntry
	n.Constraints = append(n.Constraints, initial.Mstate.Constraints...)
	initial.NodeUID = n.UID
	n.States = append(n.States, initial)

	deadline := e.deadline(e.createTimeout)
	open := e.runLoop(initial, deadline)
	e.OpenStates = open
	return open
}

// RunMessageCall runs TransactionCount further message-call phases
// against contractAddr, each phase resuming from every world state the
// previous phase left open and folding its own results back into
// OpenStates -- the mechanism by which storage written by one simulated
// transaction is visible to the next. newTx builds a fresh MessageCall
// for a given phase index and starting world state, scoping its own
// calldata/caller symbols so different phases never share a solver
// variable.
func (e *Engine) RunMessageCall(contractAddr types.Address, contractName string, newTx func(phase int, world *state.WorldState) *transaction.MessageCall) []*state.WorldState {
	worlds := e.OpenStates
	for phase := 0; phase < e.transactionCount; phase++ {
		var nextOpen []*state.WorldState
		deadline := e.deadline(e.executionTimeout)
		for _, world := range worlds {
			tx := newTx(phase, world)
			initial := tx.InitialState(world)
			n := e.Graph.NewNode(contractName)
			n.Constraints = append(n.Constraints, initial.Mstate.Constraints...)
			initial.NodeUID = n.UID
			n.States = append(n.States, initial)

			nextOpen = append(nextOpen, e.runLoop(initial, deadline)...)
		}
		worlds = nextOpen
	}
	e.OpenStates = worlds
	return worlds
}

// deadline returns the absolute time a phase must stop by, or the zero
// Time (never expires) if d is non-positive.
func (e *Engine) deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}

func deadlineExpired(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}

// runLoop drives one phase (one creation or one message call) to
// completion: it pulls states off a fresh strategy, runs pre/post hooks
// around each instruction, and dispatches the resulting Step. It returns
// the world states committed by every top-level transaction end reached
// on this phase (an EndTransaction whose transaction stack unwinds to
// empty rather than resuming a caller) that did not revert; a reverted
// top-level end commits nothing.
func (e *Engine) runLoop(initial *state.GlobalState, deadline time.Time) []*state.WorldState {
	work := e.newStrategy(e.maxDepth)
	work.Add(initial)

	var committed []*state.WorldState

	for {
		if deadlineExpired(deadline) {
			e.log.Info("phase wall-clock budget exhausted, returning partial results", "remaining", work.Len())
			break
		}
		gs, ok := work.Next()
		if !ok {
			break
		}

		op := e.evaluator.PeekOp(gs)
		e.runPreHooks(op, gs)

		step, err := e.evaluator.Execute(gs)
		if err != nil {
			e.log.Info("path abandoned", "op", op.String(), "pc", gs.Mstate.PC, "err", err)
			continue
		}

		switch s := step.(type) {
		case vm.Continue:
			for _, succ := range s.States {
				e.runPostHooks(op, succ)
			}
			e.manageContinue(op, gs, s.States)
			for _, succ := range s.States {
				work.Add(succ)
			}

		case vm.StartTransaction:
			if !isCallOp(op) {
				e.log.Info("StartTransaction raised by a non-call opcode, dropping", "op", op.String(), "pc", gs.Mstate.PC)
				continue
			}
			callee := s.Transaction.InitialState(s.CallerState.World)
			callee.TxStack = append(append([]state.TxStackEntry(nil), s.CallerState.TxStack...), state.TxStackEntry{
				Transaction: s.Transaction,
				CallerState: s.CallerState,
				RetOffset:   s.RetOffset,
				RetSize:     s.RetSize,
				OriginOp:    s.OriginOp,
			})
			transferValue(s.CallerState, callee, s.Transaction.CallValue())

			e.manageCall(gs, callee)
			e.runPostHooks(op, callee)
			work.Add(callee)

		case vm.EndTransaction:
			resumed := e.handleEndTransaction(s)
			if resumed == nil {
				if s.Reverted {
					continue
				}
				world := s.State.World
				world.Put(s.State.Environment.Active)
				world.Commit()
				committed = append(committed, world)
				continue
			}
			work.Add(resumed)
		}
	}

	return committed
}

// transferValue moves value out of the caller's active balance and into
// the callee's, in place on each state's own Account -- plain BitVec
// arithmetic regardless of whether either operand is concrete, same as
// any other arithmetic opcode. Balances are only flushed back into a
// World at transaction end, matching the same deferred-visibility
// discipline storage already uses (SSTORE writes Active.Storage, never
// the World, until the frame completes).
func transferValue(caller *state.GlobalState, callee *state.GlobalState, value *smt.BitVec) {
	if value == nil {
		return
	}
	caller.Environment.Active.Balance = caller.Environment.Active.Balance.Sub(value)
	callee.Environment.Active.Balance = callee.Environment.Active.Balance.Add(value)
}
