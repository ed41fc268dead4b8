package specification

/***** Binary combinators *****/

// And returns a specification satisfied when both children are satisfied.
// It panics with ErrNilSpecification when either child is nil.
func And[T any](left, right Specification[T]) Spec[T] {
	return newBinary(KindAnd, left, right)
}

// Or returns a specification satisfied when at least one child is satisfied.
// It panics with ErrNilSpecification when either child is nil.
func Or[T any](left, right Specification[T]) Spec[T] {
	return newBinary(KindOr, left, right)
}

// Nand returns the negation of And.
// It panics with ErrNilSpecification when either child is nil.
func Nand[T any](left, right Specification[T]) Spec[T] {
	return newBinary(KindNand, left, right)
}

// Nor returns the negation of Or.
// It panics with ErrNilSpecification when either child is nil.
func Nor[T any](left, right Specification[T]) Spec[T] {
	return newBinary(KindNor, left, right)
}

// Xor returns a specification satisfied when exactly one child is satisfied.
// Xor trees fall outside the guaranteed provider-translatable node set, see
// ProviderTranslatable. It panics with ErrNilSpecification when either child
// is nil.
func Xor[T any](left, right Specification[T]) Spec[T] {
	return newBinary(KindXor, left, right)
}

// Xnor returns the negation of Xor. The same translatability caveat applies.
// It panics with ErrNilSpecification when either child is nil.
func Xnor[T any](left, right Specification[T]) Spec[T] {
	return newBinary(KindXnor, left, right)
}

func newBinary[T any](kind Kind, left, right Specification[T]) Spec[T] {
	mustHaveSpecification(left, "left")
	mustHaveSpecification(right, "right")

	return Spec[T]{source: binarySpec[T]{kind: kind, left: left, right: right}}
}

// binarySpec holds both children by capability, never by concrete type.
// Its expression tree is rebuilt from the children's trees on every call.
type binarySpec[T any] struct {
	kind  Kind
	left  Specification[T]
	right Specification[T]
}

func (s binarySpec[T]) Expression() Expr[T] {
	return binaryExpr[T]{
		kind:  s.kind,
		left:  s.left.Expression(),
		right: s.right.Expression(),
	}
}

/***** Unary combinator *****/

// Not returns the negation of the given specification.
// It panics with ErrNilSpecification when inner is nil.
func Not[T any](inner Specification[T]) Spec[T] {
	mustHaveSpecification(inner, "inner")

	return Spec[T]{source: notSpec[T]{inner: inner}}
}

type notSpec[T any] struct {
	inner Specification[T]
}

func (s notSpec[T]) Expression() Expr[T] {
	return notExpr[T]{inner: s.inner.Expression()}
}
