package specification

// The quantifiers lift an item-level specification over a collection-valued
// property of T into an entity-level specification over T. The collection
// field names the property for query providers; the selector extracts it for
// in-memory evaluation. A nil slice returned by the selector behaves as an
// empty sequence.

// Any returns a specification satisfied when at least one item of the selected
// collection satisfies the item specification. An empty collection never
// satisfies Any.
func Any[T any, TItem any](collection FieldNameString, selector func(T) []TItem, item Specification[TItem]) Spec[T] {
	return newQuantifier(KindAny, collection, selector, item, 0)
}

// All returns a specification satisfied when every item of the selected
// collection satisfies the item specification. An empty collection satisfies
// All vacuously.
func All[T any, TItem any](collection FieldNameString, selector func(T) []TItem, item Specification[TItem]) Spec[T] {
	return newQuantifier(KindAll, collection, selector, item, 0)
}

// AtLeast returns a specification satisfied when no fewer than count items of
// the selected collection satisfy the item specification. AtLeast with count 0
// is always satisfied. The count is taken as given - callers own passing a
// sane, non-negative value.
func AtLeast[T any, TItem any](collection FieldNameString, selector func(T) []TItem, item Specification[TItem], count int) Spec[T] {
	return newQuantifier(KindAtLeast, collection, selector, item, count)
}

// AtMost returns a specification satisfied when no more than count items of
// the selected collection satisfy the item specification. AtMost with count 0
// is satisfied exactly when no item satisfies the item specification.
func AtMost[T any, TItem any](collection FieldNameString, selector func(T) []TItem, item Specification[TItem], count int) Spec[T] {
	return newQuantifier(KindAtMost, collection, selector, item, count)
}

func newQuantifier[T any, TItem any](
	kind Kind,
	collection FieldNameString,
	selector func(T) []TItem,
	item Specification[TItem],
	count int,
) Spec[T] {

	mustHaveSelector(selector == nil)
	mustHaveSpecification(item, "item")

	return Spec[T]{source: quantifierSpec[T, TItem]{
		kind:       kind,
		collection: collection,
		selector:   selector,
		item:       item,
		threshold:  count,
	}}
}

// quantifierSpec holds the item specification by capability so caller-defined
// item leaves quantify just like the built-in ones.
type quantifierSpec[T any, TItem any] struct {
	kind       Kind
	collection FieldNameString
	selector   func(T) []TItem
	item       Specification[TItem]
	threshold  int
}

func (s quantifierSpec[T, TItem]) Expression() Expr[T] {
	return quantifierExpr[T, TItem]{
		kind:      s.kind,
		field:     s.collection,
		selector:  s.selector,
		item:      s.item.Expression(),
		threshold: s.threshold,
	}
}
