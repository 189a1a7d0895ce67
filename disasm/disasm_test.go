package disasm

import "testing"

func TestDisassembleBasic(t *testing.T) {
	// PUSH1 0x05, PUSH1 0x03, ADD, STOP
	code := []byte{0x60, 0x05, 0x60, 0x03, 0x01, 0x00}
	d := Disassemble(code)

	want := []struct {
		addr int
		op   OpCode
	}{
		{0, PUSH1},
		{2, PUSH1},
		{4, ADD},
		{5, STOP},
	}
	if len(d.Instructions) != len(want) {
		t.Fatalf("len(Instructions) = %d, want %d", len(d.Instructions), len(want))
	}
	for i, w := range want {
		if d.Instructions[i].Address != w.addr || d.Instructions[i].Op != w.op {
			t.Errorf("Instructions[%d] = {%d, %s}, want {%d, %s}", i, d.Instructions[i].Address, d.Instructions[i].Op, w.addr, w.op)
		}
	}
}

func TestDisassemblePushArg(t *testing.T) {
	// PUSH2 0xaa 0xbb, STOP
	code := []byte{0x61, 0xaa, 0xbb, 0x00}
	d := Disassemble(code)

	if len(d.Instructions) != 2 {
		t.Fatalf("len(Instructions) = %d, want 2", len(d.Instructions))
	}
	if got := d.Instructions[0].Arg; len(got) != 2 || got[0] != 0xaa || got[1] != 0xbb {
		t.Errorf("Instructions[0].Arg = %x, want aabb", got)
	}
}

func TestDisassembleTruncatedPush(t *testing.T) {
	// PUSH4 with only 2 bytes of code left
	code := []byte{0x63, 0x01, 0x02}
	d := Disassemble(code)

	if len(d.Instructions) != 1 {
		t.Fatalf("len(Instructions) = %d, want 1", len(d.Instructions))
	}
	if got := d.Instructions[0].Arg; len(got) != 2 {
		t.Errorf("Instructions[0].Arg = %x, want 2 bytes (truncated)", got)
	}
}

func TestJumpdestInsidePushDataIsNotValid(t *testing.T) {
	// PUSH1 0x5b (JUMPDEST's byte value, but it's push data here), JUMPDEST, STOP
	code := []byte{0x60, 0x5b, 0x5b, 0x00}
	d := Disassemble(code)

	if d.IsValidJumpdest(1) {
		t.Errorf("IsValidJumpdest(1) = true, want false (inside PUSH1 immediate data)")
	}
	if !d.IsValidJumpdest(2) {
		t.Errorf("IsValidJumpdest(2) = false, want true (real JUMPDEST)")
	}
}

func TestIsValidJumpdestOutOfRange(t *testing.T) {
	d := Disassemble([]byte{0x00})
	if d.IsValidJumpdest(-1) {
		t.Error("IsValidJumpdest(-1) = true, want false")
	}
	if d.IsValidJumpdest(100) {
		t.Error("IsValidJumpdest(100) = true, want false")
	}
}

func TestAtPastEndOfCodeIsStop(t *testing.T) {
	d := Disassemble([]byte{0x60, 0x01})
	if op := d.At(50); op != STOP {
		t.Errorf("At(50) = %s, want STOP", op)
	}
}

func TestFunctionSelectors(t *testing.T) {
	// PUSH4 deadbeef, EQ, PUSH4 cafef00d (not followed by EQ)
	code := []byte{
		0x63, 0xde, 0xad, 0xbe, 0xef, 0x14,
		0x63, 0xca, 0xfe, 0xf0, 0x0d, 0x01,
	}
	d := Disassemble(code)
	sels := d.FunctionSelectors()
	if len(sels) != 1 {
		t.Fatalf("len(FunctionSelectors()) = %d, want 1", len(sels))
	}
	want := [4]byte{0xde, 0xad, 0xbe, 0xef}
	if sels[0] != want {
		t.Errorf("FunctionSelectors()[0] = %x, want %x", sels[0], want)
	}
}
