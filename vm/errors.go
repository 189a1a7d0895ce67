package vm

import "errors"

// Errors an evaluator handler can return. Every one of them is fatal
// only to the current path: the engine logs it and moves on to the next
// work-list item, per the propagation policy of abandon-path-not-engine.
var (
	ErrStackUnderflow    = errors.New("vm: stack underflow")
	ErrStackOverflow     = errors.New("vm: stack overflow")
	ErrInvalidJump       = errors.New("vm: invalid jump destination")
	ErrUnimplementedOp   = errors.New("vm: unimplemented opcode")
	ErrOutOfBoundsOffset = errors.New("vm: offset too large to index memory")
	ErrStaticWrite       = errors.New("vm: state-modifying opcode in a static call context")
)
