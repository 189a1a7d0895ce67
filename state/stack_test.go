package state

import (
	"errors"
	"testing"

	"github.com/laserevm/laserevm/smt"
)

func TestStackPushPop(t *testing.T) {
	s := NewStack()
	s.Push(smt.BitVecVal(42, 256))
	s.Push(smt.BitVecVal(99, 256))

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	v, err := s.Pop()
	if err != nil {
		t.Fatalf("Pop() error: %v", err)
	}
	if got, _ := v.Value(); got.Int64() != 99 {
		t.Errorf("Pop() = %s, want 99", got)
	}

	v, err = s.Pop()
	if err != nil {
		t.Fatalf("Pop() error: %v", err)
	}
	if got, _ := v.Value(); got.Int64() != 42 {
		t.Errorf("Pop() = %s, want 42", got)
	}

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestStackPopUnderflow(t *testing.T) {
	s := NewStack()
	if _, err := s.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Pop() on empty stack error = %v, want ErrStackUnderflow", err)
	}
}

func TestStackBack(t *testing.T) {
	s := NewStack()
	s.Push(smt.BitVecVal(1, 256))
	s.Push(smt.BitVecVal(2, 256))
	s.Push(smt.BitVecVal(3, 256))

	top, err := s.Back(0)
	if err != nil {
		t.Fatalf("Back(0) error: %v", err)
	}
	if v, _ := top.Value(); v.Int64() != 3 {
		t.Errorf("Back(0) = %s, want 3", v)
	}

	bottom, err := s.Back(2)
	if err != nil {
		t.Fatalf("Back(2) error: %v", err)
	}
	if v, _ := bottom.Value(); v.Int64() != 1 {
		t.Errorf("Back(2) = %s, want 1", v)
	}

	if _, err := s.Back(3); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Back(3) error = %v, want ErrStackUnderflow", err)
	}
}

func TestStackDup(t *testing.T) {
	s := NewStack()
	s.Push(smt.BitVecVal(10, 256))
	s.Push(smt.BitVecVal(20, 256))
	s.Push(smt.BitVecVal(30, 256))

	if err := s.Dup(2); err != nil {
		t.Fatalf("Dup(2) error: %v", err)
	}
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	top, _ := s.Peek()
	if v, _ := top.Value(); v.Int64() != 20 {
		t.Errorf("after Dup(2), top = %s, want 20", v)
	}
}

func TestStackSwap(t *testing.T) {
	s := NewStack()
	s.Push(smt.BitVecVal(1, 256))
	s.Push(smt.BitVecVal(2, 256))
	s.Push(smt.BitVecVal(3, 256))

	if err := s.Swap(2); err != nil {
		t.Fatalf("Swap(2) error: %v", err)
	}
	top, _ := s.Back(0)
	bottom, _ := s.Back(2)
	if v, _ := top.Value(); v.Int64() != 1 {
		t.Errorf("after Swap(2), top = %s, want 1", v)
	}
	if v, _ := bottom.Value(); v.Int64() != 3 {
		t.Errorf("after Swap(2), bottom = %s, want 3", v)
	}
}

func TestStackOverflow(t *testing.T) {
	s := NewStack()
	for i := 0; i < StackLimit; i++ {
		if err := s.Push(smt.BitVecVal(int64(i), 256)); err != nil {
			t.Fatalf("Push(%d) failed: %v", i, err)
		}
	}
	if err := s.Push(smt.BitVecVal(9999, 256)); !errors.Is(err, ErrStackOverflow) {
		t.Errorf("Push past limit error = %v, want ErrStackOverflow", err)
	}
}

func TestStackCopyIsIndependent(t *testing.T) {
	s := NewStack()
	s.Push(smt.BitVecVal(1, 256))
	s.Push(smt.BitVecVal(2, 256))

	dup := s.Copy()
	dup.Push(smt.BitVecVal(3, 256))

	if s.Len() != 2 {
		t.Errorf("original Len() = %d, want 2 (unaffected by copy's Push)", s.Len())
	}
	if dup.Len() != 3 {
		t.Errorf("copy Len() = %d, want 3", dup.Len())
	}
}
