package smt

import "testing"

type tagA struct{ n int }
type tagB struct{ n int }

func TestUnionAnnotationsBitVecBinaryOp(t *testing.T) {
	a := BitVecSym("a", 8)
	a.Annotate(tagA{1})
	b := BitVecSym("b", 8)
	b.Annotate(tagB{2})

	sum := a.Add(b)

	anns := sum.Annotations()
	if len(anns) != 2 {
		t.Fatalf("len(Add(a, b).Annotations()) = %d, want 2 (1 from a, 1 from b)", len(anns))
	}
	if anns[0] != (tagA{1}) {
		t.Errorf("Annotations()[0] = %#v, want tagA{1}", anns[0])
	}
	if anns[1] != (tagB{2}) {
		t.Errorf("Annotations()[1] = %#v, want tagB{2}", anns[1])
	}

	// The operands themselves are untouched: Add builds a new expression
	// rather than mutating a or b's own annotation lists.
	if len(a.Annotations()) != 1 || len(b.Annotations()) != 1 {
		t.Errorf("operand annotation lists changed by Add: len(a)=%d len(b)=%d, want 1 and 1", len(a.Annotations()), len(b.Annotations()))
	}
}

func TestUnionAnnotationsBitVecComparison(t *testing.T) {
	a := BitVecSym("a", 8)
	a.Annotate(tagA{1})
	b := BitVecSym("b", 8)
	b.Annotate(tagB{2})

	cond := a.Ult(b)

	anns := cond.Annotations()
	if len(anns) != 2 {
		t.Fatalf("len(Ult(a, b).Annotations()) = %d, want 2", len(anns))
	}
}

func TestUnionAnnotationsBoolBinaryOp(t *testing.T) {
	p := BoolSym("p")
	p.Annotate(tagA{3})
	q := BoolSym("q")
	q.Annotate(tagB{4})

	and := And(p, q)
	if len(and.Annotations()) != 2 {
		t.Fatalf("len(And(p, q).Annotations()) = %d, want 2", len(and.Annotations()))
	}

	or := Or(p, q)
	if len(or.Annotations()) != 2 {
		t.Fatalf("len(Or(p, q).Annotations()) = %d, want 2", len(or.Annotations()))
	}

	// Annotations accumulate across repeated combination: chaining And
	// over three operands carries all three tags forward, not just the
	// latest pair's.
	r := BoolSym("r")
	r.Annotate(tagA{5})
	chained := And(and, r)
	if len(chained.Annotations()) != 3 {
		t.Fatalf("len(And(And(p, q), r).Annotations()) = %d, want 3", len(chained.Annotations()))
	}
}

func TestUnionAnnotationsEmptyOperandsYieldNoAnnotations(t *testing.T) {
	a := BitVecSym("a", 8)
	b := BitVecSym("b", 8)

	sum := a.Add(b)
	if anns := sum.Annotations(); len(anns) != 0 {
		t.Errorf("len(Add(a, b).Annotations()) with no tagged operands = %d, want 0", len(anns))
	}
}
