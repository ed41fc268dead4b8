package postgresengine

import (
	"github.com/specql/composable-specs-go/specification"
)

// Option defines a functional option for configuring EntityStore.
type Option func(*EntityStore) error

// WithTableName sets the documents table name for the EntityStore.
func WithTableName(tableName string) Option {
	return func(es *EntityStore) error {
		if tableName == "" {
			return specification.ErrEmptyDocumentsTableName
		}

		es.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the EntityStore.
// The logger will receive messages at different levels based on the logger's
// configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Document counts, durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger specification.Logger) Option {
	return func(es *EntityStore) error {
		es.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the EntityStore.
// The collector will receive performance and operational metrics including
// query/insert durations, document counts, and database errors.
func WithMetrics(collector specification.MetricsCollector) Option {
	return func(es *EntityStore) error {
		es.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the EntityStore.
// The collector will receive distributed tracing information including span
// creation for query/count/insert operations, context propagation, and error
// tracking.
func WithTracing(collector specification.TracingCollector) Option {
	return func(es *EntityStore) error {
		es.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the EntityStore.
// The contextual logger will receive log messages with context information
// including automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger specification.ContextualLogger) Option {
	return func(es *EntityStore) error {
		es.contextualLogger = logger
		return nil
	}
}
