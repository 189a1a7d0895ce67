// Package smt is a thin, typed facade over a first-order theory of
// fixed-width bit-vectors, booleans, and arrays. It provides symbolic and
// concrete constructors, arithmetic/logical/comparison operators,
// overflow predicates, if-then-else, extraction/concatenation, and a
// solver handle. Every expression carries an annotation multiset that
// detectors use to mark provenance; annotations never affect satisfiability.
package smt

// Annotation is an opaque tag attached to an Expression. The facade never
// inspects an annotation's contents -- it only concatenates annotation
// slices as operators combine operands. Detection modules define their
// own annotation types and use a type switch or type assertion to find
// the ones they recognise on an expression returned from the stack or
// storage.
type Annotation interface{}

// unionAnnotations concatenates annotation slices in operand order. This
// is the single place the "binary ops union annotations" invariant is
// implemented; every operator constructor funnels through it so the
// invariant can't be forgotten in one arithmetic op but not another.
func unionAnnotations(sets ...[]Annotation) []Annotation {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	if n == 0 {
		return nil
	}
	out := make([]Annotation, 0, n)
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}
