package specification

import (
	"fmt"
)

// Specification is the capability every specification implements: producing a
// fresh, inspectable expression tree. Composite specifications hold their
// children through this interface, so any caller-defined leaf composes with
// the built-in combinators without touching this package.
type Specification[T any] interface {
	// Expression builds the boolean expression tree for this specification.
	// The tree is rebuilt on every call; it is never cached or pre-compiled.
	Expression() Expr[T]
}

// Spec wraps a Specification with the fluent combinator and evaluation API.
// It is a plain immutable value: every combinator allocates a new composite on
// top of the existing, already-built children and neither receiver nor
// argument are modified.
//
// The quantifiers (Any, All, AtLeast, AtMost) and the leaf factories are
// package-level functions instead of methods because Go methods cannot
// introduce the item type parameter they need.
type Spec[T any] struct {
	source Specification[T]
}

// From wraps any Specification - typically a caller-defined leaf - so it gains
// the combinator methods. It panics with ErrNilSpecification when source is nil.
func From[T any](source Specification[T]) Spec[T] {
	mustHaveSpecification(source, "source")

	return Spec[T]{source: source}
}

// Expression builds the expression tree of the wrapped specification.
// Spec itself satisfies Specification, so wrapped and unwrapped values combine
// freely.
func (s Spec[T]) Expression() Expr[T] {
	return s.source.Expression()
}

// IsSatisfiedBy evaluates the specification against a single entity in memory.
//
// The expression tree is rebuilt and compiled on every call. That favors
// correctness and simplicity over repeated-call throughput; callers evaluating
// many entities against the same specification should compile once:
//
//	satisfied := spec.Expression().Compile()
//	for _, e := range entities { ... satisfied(e) ... }
func (s Spec[T]) IsSatisfiedBy(entity T) bool {
	return s.source.Expression().Compile()(entity)
}

// And returns a specification satisfied when both operands are satisfied.
func (s Spec[T]) And(other Specification[T]) Spec[T] {
	return And[T](s.source, other)
}

// Or returns a specification satisfied when at least one operand is satisfied.
func (s Spec[T]) Or(other Specification[T]) Spec[T] {
	return Or[T](s.source, other)
}

// Nand returns the negation of And.
func (s Spec[T]) Nand(other Specification[T]) Spec[T] {
	return Nand[T](s.source, other)
}

// Nor returns the negation of Or.
func (s Spec[T]) Nor(other Specification[T]) Spec[T] {
	return Nor[T](s.source, other)
}

// Xor returns a specification satisfied when exactly one operand is satisfied.
// Xor trees are not part of the guaranteed provider-translatable node set,
// see ProviderTranslatable.
func (s Spec[T]) Xor(other Specification[T]) Spec[T] {
	return Xor[T](s.source, other)
}

// Xnor returns the negation of Xor. The same translatability caveat applies.
func (s Spec[T]) Xnor(other Specification[T]) Spec[T] {
	return Xnor[T](s.source, other)
}

// Not returns the negation of this specification.
func (s Spec[T]) Not() Spec[T] {
	return Not[T](s.source)
}

/***** Leaf factories *****/

// Satisfies builds a leaf specification from a plain predicate function.
// The resulting leaf is opaque: it evaluates in memory but cannot be
// translated by a query provider.
func Satisfies[T any](predicate func(T) bool) Spec[T] {
	if predicate == nil {
		panic(fmt.Errorf("%w: predicate", ErrNilPredicate))
	}

	return Spec[T]{source: leafSpec[T]{build: func() Expr[T] {
		return NewPredicateExpr(predicate)
	}}}
}

// FieldEquals builds an equality leaf over a selected property. The field name
// is what a query provider sees; the selector is what in-memory evaluation
// runs against.
func FieldEquals[T any, V comparable](field FieldNameString, selector func(T) V, value V) Spec[T] {
	if selector == nil {
		panic(fmt.Errorf("%w: selector", ErrNilPropertySelector))
	}

	return Spec[T]{source: leafSpec[T]{build: func() Expr[T] {
		return NewComparisonExpr(field, CompareEqual, any(value), func(entity T) bool {
			return selector(entity) == value
		})
	}}}
}

// leafSpec adapts an expression builder closure to the Specification interface.
type leafSpec[T any] struct {
	build func() Expr[T]
}

func (s leafSpec[T]) Expression() Expr[T] {
	return s.build()
}

func mustHaveSpecification[T any](s Specification[T], operand string) {
	if s == nil {
		panic(fmt.Errorf("%w: %s", ErrNilSpecification, operand))
	}
}

func mustHaveSelector(selectorIsNil bool) {
	if selectorIsNil {
		panic(fmt.Errorf("%w: selector", ErrNilPropertySelector))
	}
}
