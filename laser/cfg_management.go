package laser

import (
	"fmt"

	"github.com/laserevm/laserevm/cfg"
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/smt"
	"github.com/laserevm/laserevm/state"
)

// isCallOp reports whether op is one of the six opcodes that transfer
// control to another account's code.
func isCallOp(op disasm.OpCode) bool {
	switch op {
	case disasm.CALL, disasm.CALLCODE, disasm.DELEGATECALL, disasm.STATICCALL,
		disasm.CREATE, disasm.CREATE2:
		return true
	default:
		return false
	}
}

// nodeFor returns the CFG node a state currently belongs to.
func (e *Engine) nodeFor(gs *state.GlobalState) *cfg.Node {
	return e.Graph.Node(gs.NodeUID)
}

// newNodeFrom allocates a fresh node for succ, copying succ's current
// path-constraint snapshot and inheriting its predecessor's contract
// name, and records the edge from the predecessor's node. When succ's PC
// is a selector-dispatch target found by functionEntries, the node is
// flagged FuncEntry and succ's active function name becomes that
// selector; the node carries succ's active function name either way.
func (e *Engine) newNodeFrom(pred *state.GlobalState, succ *state.GlobalState, jt cfg.JumpType, cond *smt.Bool) *cfg.Node {
	predNode := e.nodeFor(pred)
	contractName := ""
	if predNode != nil {
		contractName = predNode.ContractName
	}
	n := e.Graph.NewNode(contractName)
	if sel, ok := functionEntries(succ.Environment.Active.Disasm)[succ.Mstate.PC]; ok {
		n.Flags |= cfg.FuncEntry
		succ.Environment.ActiveFunctionName = sel
	}
	n.ActiveFunctionName = succ.Environment.ActiveFunctionName
	n.Constraints = append([]*smt.Bool(nil), succ.Mstate.Constraints...)
	succ.NodeUID = n.UID
	n.States = append(n.States, succ)
	if predNode != nil {
		e.Graph.AddEdge(cfg.Edge{Source: predNode.UID, Target: n.UID, JumpType: jt, Condition: cond})
	}
	return n
}

// manageContinue applies the manage_cfg policy to the successors of a
// Continue step: JUMP and JUMPI open a new node per successor (JUMPI's
// carrying the branch condition it just added as a path constraint);
// every other non-branching opcode keeps its successors in the
// predecessor's own node.
func (e *Engine) manageContinue(op disasm.OpCode, pred *state.GlobalState, successors []*state.GlobalState) {
	switch op {
	case disasm.JUMP:
		for _, succ := range successors {
			e.newNodeFrom(pred, succ, cfg.Unconditional, nil)
		}
	case disasm.JUMPI:
		for _, succ := range successors {
			var cond *smt.Bool
			if n := len(succ.Mstate.Constraints); n > len(pred.Mstate.Constraints) {
				cond = succ.Mstate.Constraints[n-1]
			}
			e.newNodeFrom(pred, succ, cfg.Conditional, cond)
		}
	default:
		predNode := e.nodeFor(pred)
		for _, succ := range successors {
			succ.NodeUID = pred.NodeUID
			if predNode != nil {
				predNode.States = append(predNode.States, succ)
			}
		}
	}
}

// manageCall opens a new node for a callee's entry state and records a
// CALL edge from the caller's current node. The new node is flagged
// FuncEntry when the callee's entry PC matches a selector-dispatch
// target found by functionEntries; otherwise a callee entering at PC 0
// (every CREATE/CREATE2 callee among them) is flagged FuncEntry too and
// named "fallback".
func (e *Engine) manageCall(caller *state.GlobalState, callee *state.GlobalState) {
	predNode := e.nodeFor(caller)
	contractName := fmt.Sprintf("contract_%s", callee.Environment.Active.Address.Hex())
	n := e.Graph.NewNode(contractName)
	n.Constraints = append([]*smt.Bool(nil), callee.Mstate.Constraints...)
	callee.NodeUID = n.UID

	if sel, ok := functionEntries(callee.Environment.Active.Disasm)[callee.Mstate.PC]; ok {
		n.Flags |= cfg.FuncEntry
		n.ActiveFunctionName = sel
		callee.Environment.ActiveFunctionName = sel
	} else if callee.Mstate.PC == 0 {
		n.Flags |= cfg.FuncEntry
		n.ActiveFunctionName = "fallback"
		callee.Environment.ActiveFunctionName = "fallback"
	}
	n.States = append(n.States, callee)
	if predNode != nil {
		e.Graph.AddEdge(cfg.Edge{Source: predNode.UID, Target: n.UID, JumpType: cfg.Call})
	}
}

// manageReturn opens a new node for a caller resumed after one of its
// sub-calls finished, and records a RETURN edge from the ended
// transaction's last node.
func (e *Engine) manageReturn(ended *state.GlobalState, resumed *state.GlobalState) {
	endedNode := e.nodeFor(ended)
	contractName := ""
	if endedNode != nil {
		contractName = endedNode.ContractName
	}
	n := e.Graph.NewNode(contractName)
	n.Flags |= cfg.CallReturn
	n.Constraints = append([]*smt.Bool(nil), resumed.Mstate.Constraints...)
	resumed.NodeUID = n.UID
	n.States = append(n.States, resumed)
	if endedNode != nil {
		e.Graph.AddEdge(cfg.Edge{Source: endedNode.UID, Target: n.UID, JumpType: cfg.Return})
	}
}

// functionEntries scans a disassembly for PUSH4 <selector> ... EQ ...
// PUSH<n> <target> ... JUMPI dispatch sequences, the pattern a Solidity
// compiler emits for its selector switch, and returns the map from each
// candidate jump target PC to the selector's hex string. It is a naming
// heuristic only, layered on top of the same PUSH4/EQ matching
// disasm.FunctionSelectors already does -- a jump whose destination
// doesn't appear here just never gets a FuncEntry flag, it still executes.
func functionEntries(d *disasm.Disassembly) map[int]string {
	out := map[int]string{}
	if d == nil {
		return out
	}
	var pendingSelector *[4]byte
	for i, insn := range d.Instructions {
		switch {
		case insn.Op == 0x63 /* PUSH4 */ && len(insn.Arg) == 4:
			var sel [4]byte
			copy(sel[:], insn.Arg)
			pendingSelector = &sel
		case insn.Op == disasm.EQ && pendingSelector != nil:
			target, ok := findJumpiTarget(d.Instructions, i)
			if ok {
				out[target] = fmt.Sprintf("%x", *pendingSelector)
			}
			pendingSelector = nil
		case insn.Op == disasm.JUMPI:
			// A JUMPI not immediately tied to a pending EQ comparison
			// clears any stale selector so it can't leak onto later code.
			pendingSelector = nil
		}
	}
	return out
}

// findJumpiTarget looks a few instructions ahead of index i (the EQ that
// just compared a selector) for a PUSH followed by JUMPI, returning the
// pushed value as the candidate function entry PC.
func findJumpiTarget(instrs []disasm.Instruction, i int) (int, bool) {
	const lookahead = 4
	for j := i + 1; j < len(instrs) && j <= i+lookahead; j++ {
		if !instrs[j].Op.IsPush() {
			continue
		}
		if j+1 < len(instrs) && instrs[j+1].Op == disasm.JUMPI {
			target := 0
			for _, b := range instrs[j].Arg {
				target = target<<8 | int(b)
			}
			return target, true
		}
	}
	return 0, false
}
