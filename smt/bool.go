package smt

// Bool is a boolean-sorted symbolic expression: the result of a
// comparison, an overflow predicate, or an explicit boolean constructor.
// It is also what Solver.Add expects as a path constraint.
type Bool struct {
	base
}

func newBool(t term, annotations []Annotation) *Bool {
	return &Bool{base{t: t, annotations: annotations}}
}

// BoolVal constructs a concrete boolean literal.
func BoolVal(v bool) *Bool {
	return newBool(&boolConst{val: v}, nil)
}

// BoolSym constructs a free boolean variable.
func BoolSym(name string) *Bool {
	return newBool(&boolSym{name: name}, nil)
}

// Not negates a boolean expression, preserving its annotations.
func Not(a *Bool) *Bool {
	return newBool(&boolNot{a: a.t}, append([]Annotation{}, a.annotations...))
}

// And conjoins two boolean expressions, unioning their annotations.
func And(a, b *Bool) *Bool {
	return newBool(&boolBin{and: true, a: a.t, b: b.t}, unionAnnotations(a.annotations, b.annotations))
}

// Or disjoins two boolean expressions, unioning their annotations.
func Or(a, b *Bool) *Bool {
	return newBool(&boolBin{and: false, a: a.t, b: b.t}, unionAnnotations(a.annotations, b.annotations))
}

// IsTrue reports whether this expression simplifies to the literal true.
func (b *Bool) IsTrue() bool {
	s := simplify(b.t)
	c, ok := s.(*boolConst)
	return ok && c.val
}

// IsFalse reports whether this expression simplifies to the literal false.
func (b *Bool) IsFalse() bool {
	s := simplify(b.t)
	c, ok := s.(*boolConst)
	return ok && !c.val
}

// String renders the expression for debug output.
func (b *Bool) String() string { return b.t.String() }
