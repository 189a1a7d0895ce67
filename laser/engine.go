// Package laser is the driving engine: it pulls global states off a
// search strategy's work list, steps them through the instruction
// evaluator, and turns the Step each instruction produces into work-list
// insertions, transaction-stack pushes/pops, and control-flow-graph
// nodes/edges. Detection modules observe execution by registering
// pre/post hooks on specific opcodes; the engine never imports a
// detection module's package, only the Module interface below.
package laser

import (
	"time"

	"github.com/laserevm/laserevm/cfg"
	"github.com/laserevm/laserevm/disasm"
	"github.com/laserevm/laserevm/log"
	"github.com/laserevm/laserevm/state"
	"github.com/laserevm/laserevm/strategy"
	"github.com/laserevm/laserevm/vm"
)

// Hook observes a GlobalState at an opcode boundary. A pre-hook sees the
// state immediately before that opcode executes; a post-hook sees each
// successor state immediately after. Hooks annotate state (via
// GlobalState.Annotate) or record findings on their own module; they
// never enqueue work themselves -- only the engine's run loop does that,
// so hook order can never race with traversal order.
type Hook func(gs *state.GlobalState)

// Module wires its pre/post hooks into an Engine. Detection modules
// implement this so the engine can depend on the interface without
// depending on any concrete module's package.
type Module interface {
	Register(e *Engine)
}

// Config bundles everything an Engine needs to run a contract through a
// creation phase and zero or more message-call phases.
type Config struct {
	// MaxDepth bounds the number of instructions executed on any single
	// path before the strategy silently drops it.
	MaxDepth int
	// ExecutionTimeout bounds wall-clock time spent on a single
	// message-call phase; CreateTimeout bounds a single creation phase.
	// Either timeout firing ends that phase normally, keeping whatever
	// OpenStates and CFG nodes were produced so far.
	ExecutionTimeout time.Duration
	CreateTimeout    time.Duration
	// TransactionCount is the number of message-call phases to run after
	// creation, each one entering the contract fresh against the world
	// states left open by the previous phase.
	TransactionCount int
	// NewStrategy builds a fresh work-list discipline for one phase.
	// Defaults to strategy.NewDepthFirst if nil.
	NewStrategy func(maxDepth int) strategy.Strategy
	// Modules are registered against the Engine once, at construction.
	Modules []Module
	// DynamicLoader and OnchainStorageAccess are forwarded to the
	// instruction evaluator unchanged.
	DynamicLoader        vm.DynamicLoader
	OnchainStorageAccess bool
}

// Engine is the symbolic execution driver for one contract analysis run.
// Its CFG accumulates across every phase (creation and every message
// call) so that callers see one connected graph for the whole run.
type Engine struct {
	Graph     *cfg.Graph
	evaluator *vm.Evaluator
	log       *log.Logger

	newStrategy func(maxDepth int) strategy.Strategy
	maxDepth    int

	executionTimeout time.Duration
	createTimeout    time.Duration
	transactionCount int

	preHooks  map[disasm.OpCode][]Hook
	postHooks map[disasm.OpCode][]Hook

	// OpenStates is the set of world states left over after the most
	// recently run phase: the input a following message-call phase
	// resumes from, and the final output of the whole run once every
	// phase has executed.
	OpenStates []*state.WorldState
}

// New builds an Engine ready to run a creation phase. Pre/post hooks from
// every configured Module are registered immediately.
func New(conf Config) *Engine {
	newStrategy := conf.NewStrategy
	if newStrategy == nil {
		newStrategy = func(maxDepth int) strategy.Strategy { return strategy.NewDepthFirst(maxDepth) }
	}
	e := &Engine{
		Graph:            cfg.NewGraph(),
		evaluator:        vm.NewEvaluator(conf.DynamicLoader, conf.OnchainStorageAccess),
		log:              log.Default().Module("laser"),
		newStrategy:      newStrategy,
		maxDepth:         conf.MaxDepth,
		executionTimeout: conf.ExecutionTimeout,
		createTimeout:    conf.CreateTimeout,
		transactionCount: conf.TransactionCount,
		preHooks:         map[disasm.OpCode][]Hook{},
		postHooks:        map[disasm.OpCode][]Hook{},
	}
	for _, m := range conf.Modules {
		m.Register(e)
	}
	return e
}

// RegisterPreHook appends h to the opcode's pre-hook list. Hooks run in
// registration order.
func (e *Engine) RegisterPreHook(op disasm.OpCode, h Hook) {
	e.preHooks[op] = append(e.preHooks[op], h)
}

// RegisterPostHook appends h to the opcode's post-hook list.
func (e *Engine) RegisterPostHook(op disasm.OpCode, h Hook) {
	e.postHooks[op] = append(e.postHooks[op], h)
}

func (e *Engine) runPreHooks(op disasm.OpCode, gs *state.GlobalState) {
	for _, h := range e.preHooks[op] {
		h(gs)
	}
}

func (e *Engine) runPostHooks(op disasm.OpCode, gs *state.GlobalState) {
	for _, h := range e.postHooks[op] {
		h(gs)
	}
}
