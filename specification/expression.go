package specification

import (
	"fmt"
)

// FieldNameString is a type alias for string, naming a document field a leaf
// expression refers to. An empty field name refers to the current value itself,
// which is only meaningful for item expressions inside a quantifier.
type FieldNameString = string

/***** Kind *****/

// Kind identifies the node type of an expression tree node.
type Kind uint8

const (
	KindPredicate Kind = iota // opaque predicate leaf, in-memory only
	KindComparison
	KindMatch
	KindAnd
	KindOr
	KindNand
	KindNor
	KindXor
	KindXnor
	KindNot
	KindAny
	KindAll
	KindAtLeast
	KindAtMost
)

var kindNames = map[Kind]string{
	KindPredicate:  "predicate",
	KindComparison: "comparison",
	KindMatch:      "match",
	KindAnd:        "and",
	KindOr:         "or",
	KindNand:       "nand",
	KindNor:        "nor",
	KindXor:        "xor",
	KindXnor:       "xnor",
	KindNot:        "not",
	KindAny:        "any",
	KindAll:        "all",
	KindAtLeast:    "at_least",
	KindAtMost:     "at_most",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

/***** CompareOp *****/

// CompareOp is the comparison operator carried by a comparison leaf.
type CompareOp string

const (
	CompareEqual          CompareOp = "="
	CompareNotEqual       CompareOp = "<>"
	CompareGreaterThan    CompareOp = ">"
	CompareGreaterOrEqual CompareOp = ">="
	CompareLessThan       CompareOp = "<"
	CompareLessOrEqual    CompareOp = "<="
)

/***** Tree views *****/

// TreeNode is the untyped, inspectable view of an expression tree node.
// Query providers walk TreeNodes to translate a specification into their
// native query form without knowing the entity type behind it.
type TreeNode interface {
	Kind() Kind
}

// BinaryNode is the view of a node combining two boolean children
// (And, Or, Nand, Nor, Xor, Xnor).
type BinaryNode interface {
	TreeNode
	Left() TreeNode
	Right() TreeNode
}

// UnaryNode is the view of a node negating one boolean child (Not).
type UnaryNode interface {
	TreeNode
	Inner() TreeNode
}

// QuantifierNode is the view of a node lifting an item-level expression over a
// collection-valued field (Any, All, AtLeast, AtMost). Threshold is only
// meaningful for AtLeast and AtMost.
type QuantifierNode interface {
	TreeNode
	CollectionField() FieldNameString
	ItemExpression() TreeNode
	Threshold() int
}

// MatchNode is the view of a pattern-match leaf.
type MatchNode interface {
	TreeNode
	Field() FieldNameString
	Pattern() string
}

// ComparisonNode is the view of a comparison leaf carrying translation
// metadata alongside its compiled predicate.
type ComparisonNode interface {
	TreeNode
	Field() FieldNameString
	Compare() CompareOp
	Value() any
}

/***** Expr *****/

// Expr is a boolean-valued expression tree over entities of type T.
//
// The tree form stays inspectable through the TreeNode views; Compile builds a
// fresh callable predicate from the tree. Nothing is cached between calls -
// call sites that evaluate the same expression in bulk should compile once and
// reuse the returned predicate.
type Expr[T any] interface {
	TreeNode
	Compile() func(T) bool
}

// ProviderTranslatable reports whether every node in the tree belongs to the
// node set query providers are required to support: comparison and match
// leaves, and/or/nand/nor, not, and the four quantifiers.
//
// Xor and Xnor are outside that set - boolean exclusive-or has no guaranteed
// representation in external query languages, and providers may reject it
// (the bundled Postgres engine happens to translate it by expansion). Opaque
// predicate leaves are never translatable.
func ProviderTranslatable(node TreeNode) bool {
	switch n := node.(type) {
	case BinaryNode:
		switch n.Kind() {
		case KindXor, KindXnor:
			return false
		default:
			return ProviderTranslatable(n.Left()) && ProviderTranslatable(n.Right())
		}
	case UnaryNode:
		return ProviderTranslatable(n.Inner())
	case QuantifierNode:
		return ProviderTranslatable(n.ItemExpression())
	case MatchNode, ComparisonNode:
		return true
	default:
		return false
	}
}

/***** Leaf constructors *****/

// NewPredicateExpr builds an opaque predicate leaf from a compiled predicate
// function. Opaque leaves evaluate in memory but carry no metadata a query
// provider could translate.
func NewPredicateExpr[T any](predicate func(T) bool) Expr[T] {
	if predicate == nil {
		panic(fmt.Errorf("%w: predicate", ErrNilPredicate))
	}

	return predicateExpr[T]{predicate: predicate}
}

// NewComparisonExpr builds a comparison leaf. The field, operator and value
// are what a query provider sees; the predicate is what in-memory evaluation
// runs. Both sides describe the same condition - keeping them consistent is
// the caller's responsibility.
func NewComparisonExpr[T any](field FieldNameString, op CompareOp, value any, predicate func(T) bool) Expr[T] {
	if predicate == nil {
		panic(fmt.Errorf("%w: predicate", ErrNilPredicate))
	}

	return comparisonExpr[T]{field: field, op: op, value: value, predicate: predicate}
}

/***** Node implementations *****/

type predicateExpr[T any] struct {
	predicate func(T) bool
}

func (e predicateExpr[T]) Kind() Kind { return KindPredicate }

func (e predicateExpr[T]) Compile() func(T) bool { return e.predicate }

type comparisonExpr[T any] struct {
	field     FieldNameString
	op        CompareOp
	value     any
	predicate func(T) bool
}

func (e comparisonExpr[T]) Kind() Kind { return KindComparison }

func (e comparisonExpr[T]) Field() FieldNameString { return e.field }

func (e comparisonExpr[T]) Compare() CompareOp { return e.op }

func (e comparisonExpr[T]) Value() any { return e.value }

func (e comparisonExpr[T]) Compile() func(T) bool { return e.predicate }

type binaryExpr[T any] struct {
	kind  Kind
	left  Expr[T]
	right Expr[T]
}

func (e binaryExpr[T]) Kind() Kind { return e.kind }

func (e binaryExpr[T]) Left() TreeNode { return e.left }

func (e binaryExpr[T]) Right() TreeNode { return e.right }

func (e binaryExpr[T]) Compile() func(T) bool {
	left := e.left.Compile()
	right := e.right.Compile()

	switch e.kind {
	case KindAnd:
		return func(entity T) bool { return left(entity) && right(entity) }
	case KindOr:
		return func(entity T) bool { return left(entity) || right(entity) }
	case KindNand:
		return func(entity T) bool { return !(left(entity) && right(entity)) }
	case KindNor:
		return func(entity T) bool { return !(left(entity) || right(entity)) }
	case KindXor:
		return func(entity T) bool { return left(entity) != right(entity) }
	case KindXnor:
		return func(entity T) bool { return left(entity) == right(entity) }
	default:
		panic(fmt.Errorf("%w: %s is not a binary combinator", ErrUnknownNodeKind, e.kind))
	}
}

type notExpr[T any] struct {
	inner Expr[T]
}

func (e notExpr[T]) Kind() Kind { return KindNot }

func (e notExpr[T]) Inner() TreeNode { return e.inner }

func (e notExpr[T]) Compile() func(T) bool {
	inner := e.inner.Compile()

	return func(entity T) bool { return !inner(entity) }
}

type quantifierExpr[T any, TItem any] struct {
	kind      Kind
	field     FieldNameString
	selector  func(T) []TItem
	item      Expr[TItem]
	threshold int
}

func (e quantifierExpr[T, TItem]) Kind() Kind { return e.kind }

func (e quantifierExpr[T, TItem]) CollectionField() FieldNameString { return e.field }

func (e quantifierExpr[T, TItem]) ItemExpression() TreeNode { return e.item }

func (e quantifierExpr[T, TItem]) Threshold() int { return e.threshold }

func (e quantifierExpr[T, TItem]) Compile() func(T) bool {
	itemPredicate := e.item.Compile()

	switch e.kind {
	case KindAny:
		return func(entity T) bool {
			for _, item := range e.selector(entity) {
				if itemPredicate(item) {
					return true
				}
			}

			return false
		}

	case KindAll:
		return func(entity T) bool {
			for _, item := range e.selector(entity) {
				if !itemPredicate(item) {
					return false
				}
			}

			return true
		}

	case KindAtLeast:
		return func(entity T) bool {
			matching := 0
			for _, item := range e.selector(entity) {
				if itemPredicate(item) {
					matching++
					if matching >= e.threshold {
						return true
					}
				}
			}

			return matching >= e.threshold
		}

	case KindAtMost:
		return func(entity T) bool {
			matching := 0
			for _, item := range e.selector(entity) {
				if itemPredicate(item) {
					matching++
					if matching > e.threshold {
						return false
					}
				}
			}

			return true
		}

	default:
		panic(fmt.Errorf("%w: %s is not a quantifier", ErrUnknownNodeKind, e.kind))
	}
}
