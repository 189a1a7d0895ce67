// Package swc holds the Smart Contract Weakness Classification
// identifiers the detection modules attach to the issues they emit.
package swc

const (
	IntegerOverflowAndUnderflow = "SWC-101"
	Reentrancy                  = "SWC-107"
	AssertViolation             = "SWC-110"
)
