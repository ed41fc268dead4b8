// Package postgresengine provides a PostgreSQL query provider for the
// specification package.
//
// Entities are stored as JSON documents in a single table (id, entity_type,
// payload jsonb). Query and Count translate specification expression trees
// into SQL: equality leaves become jsonb containment checks, pattern-match
// leaves become regex matches on the extracted text (with absent values
// coalesced to the empty string), and quantifiers become EXISTS or counting
// subqueries over jsonb_array_elements. Opaque predicate leaves cannot be
// pushed down and are rejected with ErrUntranslatableExpression.
//
// Key features:
//   - Multiple database adapter support (PGX with optional read replica, SQL, SQLX)
//   - Specification push-down including quantifiers over nested collections
//   - Configurable table name, logging, metrics, and tracing
//
// Usage example:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewEntityStoreFromPGXPool(
//		db,
//		postgresengine.WithTableName("customer_documents"),
//		postgresengine.WithLogger(logger),
//	)
//
//	spec := specification.FieldEquals("status", selectStatus, "active")
//	docs, err := store.Query(ctx, "customer", spec.Expression())
package postgresengine
