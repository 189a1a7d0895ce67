// Package analysis defines the output contract detection modules produce:
// one Issue per hazardous state a module proved reachable, independent of
// which module found it or which opcode triggered it.
package analysis

// Severity ranks an Issue's impact, loosely following the convention the
// corpus's own detection modules already use.
type Severity string

const (
	Low    Severity = "Low"
	Medium Severity = "Medium"
	High   Severity = "High"
)

// Issue is one finding: a hazardous state a detection module proved
// reachable, plus enough context to locate and reproduce it.
type Issue struct {
	ContractName string
	FunctionName string
	Address      int // byte offset into the contract's bytecode
	SWCID        string
	Title        string
	Severity     Severity

	DescriptionHead string
	DescriptionTail string

	MinGasUsed uint64
	MaxGasUsed uint64

	// Debug is an optional human-readable rendering of the witness
	// transaction sequence that reaches this state (calldata/caller/value
	// bindings), left empty when no model was requested or available.
	Debug string

	BytecodeHash string
}
