// Package specification provides composable, provider-translatable
// specifications over typed entities.
//
// A specification is a boolean predicate over an entity type that exists in
// two forms at once: a structured, inspectable expression tree that a query
// provider can translate into its native query language, and a compiled
// predicate for direct in-memory evaluation. Combinators never collapse the
// tree into an opaque closure, so composed specifications stay translatable.
//
// Specifications are combined through the boolean combinators
// (And, Or, Not, Nand, Nor, Xor, Xnor) and lifted over collection-valued
// properties through the quantifiers (Any, All, AtLeast, AtMost).
//
// Key types:
//   - Specification: the one-method capability every leaf implements
//   - Spec: fluent wrapper with combinators and IsSatisfiedBy
//   - Expr / TreeNode: the typed expression tree and its untyped views
//   - StorableDocument: DTO used by the bundled Postgres query provider
//
// Common usage pattern:
//
//	vip := specification.FieldEquals("status", func(c Customer) string { return c.Status }, "vip")
//	named := specification.RegexMatch("name", func(c Customer) any { return c.Name }, "^A")
//	spec := vip.And(named)
//
//	if spec.IsSatisfiedBy(customer) {
//		// in-memory evaluation
//	}
//
//	docs, err := store.Query(ctx, "customer", spec.Expression())
//	// pushed down to Postgres by the postgresengine package
//
// Specifications are immutable after construction and may be shared and
// evaluated concurrently without locking. Every IsSatisfiedBy call rebuilds
// and recompiles the expression tree; bulk call sites should compile once via
// Expression().Compile() and reuse the predicate.
package specification
