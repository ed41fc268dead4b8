package userland

import (
	"github.com/specql/composable-specs-go/specification"
)

// HasStatusSpec is a caller-defined leaf: it implements the Specification
// capability directly instead of going through the package's leaf factories,
// proving that external leaves combine with the built-in combinators.
type HasStatusSpec struct {
	status string
}

// HasStatus creates a specification for customers in the given status.
func HasStatus(status string) HasStatusSpec {
	return HasStatusSpec{status: status}
}

// Expression builds a comparison leaf carrying both the compiled predicate and
// the metadata a query provider needs.
func (s HasStatusSpec) Expression() specification.Expr[Customer] {
	return specification.NewComparisonExpr(
		"status",
		specification.CompareEqual,
		s.status,
		func(c Customer) bool { return c.Status == s.status },
	)
}

// TagIs creates an item-level specification over the elements of the tags
// collection. The empty field name refers to the element itself.
func TagIs(value string) specification.Spec[string] {
	return specification.FieldEquals("", func(tag string) string { return tag }, value)
}

// OrderHasStatus creates an item-level specification over the orders
// collection.
func OrderHasStatus(status string) specification.Spec[Order] {
	return specification.FieldEquals("status", func(o Order) string { return o.Status }, status)
}

// OrderTotalAbove creates an item-level specification matching orders with a
// total strictly above the given amount. It is an opaque leaf on the
// evaluation side combined with comparison metadata for providers.
func OrderTotalAbove(amount float64) specification.Spec[Order] {
	return specification.From[Order](orderTotalAboveSpec{amount: amount})
}

type orderTotalAboveSpec struct {
	amount float64
}

func (s orderTotalAboveSpec) Expression() specification.Expr[Order] {
	return specification.NewComparisonExpr(
		"total",
		specification.CompareGreaterThan,
		s.amount,
		func(o Order) bool { return o.Total > s.amount },
	)
}
