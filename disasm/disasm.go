package disasm

// Instruction is one decoded opcode at its code offset, plus any
// immediate PUSH data that follows it.
type Instruction struct {
	Address int
	Op      OpCode
	Arg     []byte // immediate data for PUSH opcodes, nil otherwise
}

// Disassembly is the decoded form of a contract's bytecode: the linear
// instruction list plus the set of valid JUMPDEST offsets, computed
// once and cached for the lifetime of the contract's code.
type Disassembly struct {
	Bytecode     []byte
	Instructions []Instruction
	jumpdests    map[int]bool
}

// Disassemble decodes bytecode into a linear instruction list and
// computes its JUMPDEST index in the same pass: a byte can only be
// JUMPDEST if it isn't also sitting inside a preceding PUSH's
// immediate-data run, so the two computations are inseparable.
func Disassemble(bytecode []byte) *Disassembly {
	d := &Disassembly{Bytecode: bytecode, jumpdests: map[int]bool{}}
	for i := 0; i < len(bytecode); {
		op := OpCode(bytecode[i])
		insn := Instruction{Address: i, Op: op}
		if op == JUMPDEST {
			d.jumpdests[i] = true
		}
		size := op.PushSize()
		if size > 0 {
			end := i + 1 + size
			if end > len(bytecode) {
				end = len(bytecode)
			}
			insn.Arg = append([]byte(nil), bytecode[i+1:end]...)
		}
		d.Instructions = append(d.Instructions, insn)
		i += 1 + size
	}
	return d
}

// IsValidJumpdest reports whether dest is a JUMPDEST opcode reached at
// an instruction boundary (not inside a PUSH's immediate data).
func (d *Disassembly) IsValidJumpdest(dest int) bool {
	if dest < 0 || dest >= len(d.Bytecode) {
		return false
	}
	return d.jumpdests[dest]
}

// At returns the opcode at a code offset, or STOP past the end of the
// code -- execution falling off the end of a contract behaves as if it
// hit an implicit STOP.
func (d *Disassembly) At(offset int) OpCode {
	if offset < 0 || offset >= len(d.Bytecode) {
		return STOP
	}
	return OpCode(d.Bytecode[offset])
}

// FunctionSelectors scans every instruction for a PUSH4 <selector>
// immediately followed by EQ, returning the 4-byte selectors the contract
// appears to branch on. It is a heuristic used only to seed human-
// readable function names on CFG nodes, not for resolving jumps.
func (d *Disassembly) FunctionSelectors() [][4]byte {
	var out [][4]byte
	for i, insn := range d.Instructions {
		if insn.Op != 0x63 /* PUSH4 */ || len(insn.Arg) != 4 {
			continue
		}
		if i+1 < len(d.Instructions) && d.Instructions[i+1].Op == EQ {
			var sel [4]byte
			copy(sel[:], insn.Arg)
			out = append(out, sel)
		}
	}
	return out
}
