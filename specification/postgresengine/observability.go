package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/specql/composable-specs-go/specification"
)

const (
	operationQuery  = "query"
	operationCount  = "count"
	operationInsert = "insert"

	spanNamePrefix = "entitystore."

	statusSuccess = "success"
	statusError   = "error"

	spanAttrOperation     = "operation"
	spanAttrEntityType    = "entity_type"
	spanAttrDocumentCount = "document_count"
	spanAttrDurationMS    = "duration_ms"
	spanAttrErrorType     = "error_type"

	metricQueryDuration     = "entitystore_query_duration"
	metricCountDuration     = "entitystore_count_duration"
	metricInsertDuration    = "entitystore_insert_duration"
	metricDocumentsQueried  = "entitystore_documents_queried"
	metricDocumentsInserted = "entitystore_documents_inserted"
	metricDatabaseErrors    = "entitystore_database_errors"

	errorTypeBuildQuery = "build_query"
	errorTypeDatabase   = "database"
	errorTypeScanRow    = "scan_row"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if
// the logger is configured.
func (es *EntityStore) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if es.logger != nil {
		es.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, es.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logQueryWithDurationContext logs SQL queries with execution time and context
// correlation.
func (es *EntityStore) logQueryWithDurationContext(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {
	if es.contextualLogger != nil {
		es.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, es.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is
// configured.
func (es *EntityStore) logOperation(action string, args ...any) {
	if es.logger != nil {
		es.logger.Info(logMsgOperation+action, args...)
	}
}

// logOperationContext logs operational information with context correlation.
func (es *EntityStore) logOperationContext(ctx context.Context, action string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logError logs error information at the error level if the logger is
// configured.
func (es *EntityStore) logError(message string, err error, args ...any) {
	if es.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		es.logger.Error(message, allArgs...)
	}
}

// logErrorContext logs error information with context correlation.
func (es *EntityStore) logErrorContext(ctx context.Context, message string, err error, args ...any) {
	if es.contextualLogger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		es.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3
// decimal places.
func (es *EntityStore) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetricsContext records duration metrics, using the
// context-aware method when the collector supports it.
func (es *EntityStore) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {
	if es.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          status,
	}

	if contextualCollector, ok := es.metricsCollector.(specification.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
	} else {
		es.metricsCollector.RecordDuration(metricName, duration, labels)
	}
}

// recordValueMetricsContext records value metrics, using the context-aware
// method when the collector supports it.
func (es *EntityStore) recordValueMetricsContext(
	ctx context.Context,
	metricName string,
	value float64,
	operation, status string,
) {
	if es.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          status,
	}

	if contextualCollector, ok := es.metricsCollector.(specification.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
	} else {
		es.metricsCollector.RecordValue(metricName, value, labels)
	}
}

// recordErrorMetricsContext records error counter metrics, using the
// context-aware method when the collector supports it.
func (es *EntityStore) recordErrorMetricsContext(ctx context.Context, operation, errorType string) {
	if es.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := es.metricsCollector.(specification.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
	} else {
		es.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

// operationObserver encapsulates tracing span and metrics lifecycle management
// for one store operation.
type operationObserver struct {
	es        *EntityStore
	ctx       context.Context
	span      specification.SpanContext
	operation string
}

// startOperation starts the tracing span for an operation and returns the
// observer plus the possibly span-enriched context.
func (es *EntityStore) startOperation(ctx context.Context, operation, entityType string) (*operationObserver, context.Context) {
	var span specification.SpanContext

	if es.tracingCollector != nil {
		attrs := map[string]string{
			spanAttrOperation:  operation,
			spanAttrEntityType: entityType,
		}
		ctx, span = es.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, attrs)
	}

	return &operationObserver{
		es:        es,
		ctx:       ctx,
		span:      span,
		operation: operation,
	}, ctx
}

// finishError records error metrics and finishes the span with error details.
func (o *operationObserver) finishError(errorType string, duration time.Duration) {
	if duration > 0 {
		o.es.recordDurationMetricsContext(o.ctx, o.durationMetric(), duration, o.operation, statusError)
	}

	o.es.recordErrorMetricsContext(o.ctx, o.operation, errorType)

	if o.span != nil {
		o.span.SetStatus(statusError)
		o.span.AddAttribute(spanAttrErrorType, errorType)

		if duration > 0 {
			o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", o.es.toMilliseconds(duration)))
		}

		o.es.tracingCollector.FinishSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
	}
}

// finishQuerySuccess records metrics and finishes the span for a successful
// query or count operation.
func (o *operationObserver) finishQuerySuccess(documentCount int, duration time.Duration) {
	o.es.recordDurationMetricsContext(o.ctx, o.durationMetric(), duration, o.operation, statusSuccess)
	o.es.recordValueMetricsContext(o.ctx, metricDocumentsQueried, float64(documentCount), o.operation, statusSuccess)

	o.finishSpanSuccess(documentCount, duration)
}

// finishInsertSuccess records metrics and finishes the span for a successful
// insert operation.
func (o *operationObserver) finishInsertSuccess(documentCount int, duration time.Duration) {
	o.es.recordDurationMetricsContext(o.ctx, o.durationMetric(), duration, o.operation, statusSuccess)
	o.es.recordValueMetricsContext(o.ctx, metricDocumentsInserted, float64(documentCount), o.operation, statusSuccess)

	o.finishSpanSuccess(documentCount, duration)
}

func (o *operationObserver) finishSpanSuccess(documentCount int, duration time.Duration) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(statusSuccess)
	o.span.AddAttribute(spanAttrDocumentCount, fmt.Sprintf("%d", documentCount))
	o.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", o.es.toMilliseconds(duration)))

	o.es.tracingCollector.FinishSpan(o.span, statusSuccess, map[string]string{
		spanAttrDocumentCount: fmt.Sprintf("%d", documentCount),
	})
}

func (o *operationObserver) durationMetric() string {
	switch o.operation {
	case operationCount:
		return metricCountDuration
	case operationInsert:
		return metricInsertDuration
	default:
		return metricQueryDuration
	}
}
