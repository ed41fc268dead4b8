package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/specql/composable-specs-go/specification"
	"github.com/specql/composable-specs-go/specification/postgresengine/internal/adapters"
)

const (
	defaultDocumentsTableName = "documents"
	colID                     = "id"
	colEntityType             = "entity_type"
	colPayload                = "payload"
	dialectPostgres           = "postgres"
	castJsonb                 = "?::jsonb"
)

const (
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildCountQueryFailed  = "failed to build count query"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed during document insert"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgBuildDocumentFailed    = "failed to build storable document from database row"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgQueryCompleted         = "query completed"
	logMsgCountCompleted         = "count completed"
	logMsgDocumentsInserted      = "documents inserted"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "entitystore operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrEntityType            = "entity_type"
	logAttrDocumentCount         = "document_count"
	logAttrDurationMS            = "duration_ms"
	logAttrRowsAffected          = "rows_affected"
	logActionQuery               = "query"
	logActionCount               = "count"
	logActionInsert              = "insert"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// EntityStore stores JSON documents in a Postgres table and queries them back
// by translating specification expression trees into SQL. It leverages a
// database adapter and supports customizable logging, metrics, and tracing.
type EntityStore struct {
	db               adapters.DBAdapter
	tableName        string
	logger           specification.Logger
	metricsCollector specification.MetricsCollector
	tracingCollector specification.TracingCollector
	contextualLogger specification.ContextualLogger
}

// NewEntityStoreFromPGXPool creates a new EntityStore using a pgx Pool with
// optional configuration.
func NewEntityStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EntityStore, error) {
	if db == nil {
		return nil, specification.ErrNilDatabaseConnection
	}

	return newEntityStore(adapters.NewPGXAdapter(db), options...)
}

// NewEntityStoreFromPGXPoolWithReplica creates a new EntityStore using a
// primary pgx Pool for writes and a replica pool for reads.
func NewEntityStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*EntityStore, error) {
	if db == nil || replica == nil {
		return nil, specification.ErrNilDatabaseConnection
	}

	return newEntityStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewEntityStoreFromSQLDB creates a new EntityStore using a sql.DB with
// optional configuration.
func NewEntityStoreFromSQLDB(db *sql.DB, options ...Option) (*EntityStore, error) {
	if db == nil {
		return nil, specification.ErrNilDatabaseConnection
	}

	return newEntityStore(adapters.NewSQLAdapter(db), options...)
}

// NewEntityStoreFromSQLX creates a new EntityStore using a sqlx.DB with
// optional configuration.
func NewEntityStoreFromSQLX(db *sqlx.DB, options ...Option) (*EntityStore, error) {
	if db == nil {
		return nil, specification.ErrNilDatabaseConnection
	}

	return newEntityStore(adapters.NewSQLXAdapter(db), options...)
}

func newEntityStore(db adapters.DBAdapter, options ...Option) (*EntityStore, error) {
	es := &EntityStore{
		db:        db,
		tableName: defaultDocumentsTableName,
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Query retrieves all documents of the given entity type whose payload
// satisfies the expression tree and returns them as
// specification.StorableDocuments.
//
// A nil where tree selects all documents of the entity type. The tree must
// only contain translatable nodes, see specification.ProviderTranslatable;
// opaque predicate leaves yield specification.ErrUntranslatableExpression.
func (es *EntityStore) Query(
	ctx context.Context,
	entityType string,
	where specification.TreeNode,
) (specification.StorableDocuments, error) {

	var empty specification.StorableDocuments

	observer, ctx := es.startOperation(ctx, operationQuery, entityType)

	sqlQuery, buildQueryErr := es.buildSelectQuery(entityType, where)
	if buildQueryErr != nil {
		es.logError(logMsgBuildSelectQueryFailed, buildQueryErr)
		es.logErrorContext(ctx, logMsgBuildSelectQueryFailed, buildQueryErr)
		observer.finishError(errorTypeBuildQuery, 0)

		return empty, buildQueryErr
	}

	rows, duration, queryErr := es.executeQuery(ctx, sqlQuery, logActionQuery)
	if queryErr != nil {
		observer.finishError(errorTypeDatabase, duration)

		return empty, queryErr
	}
	defer es.closeRows(rows)

	documents, scanErr := es.scanDocuments(ctx, rows)
	if scanErr != nil {
		observer.finishError(errorTypeScanRow, duration)

		return empty, scanErr
	}

	es.logOperation(logMsgQueryCompleted,
		logAttrEntityType, entityType,
		logAttrDocumentCount, len(documents),
		logAttrDurationMS, es.toMilliseconds(duration))
	es.logOperationContext(ctx, logMsgQueryCompleted,
		logAttrEntityType, entityType,
		logAttrDocumentCount, len(documents),
		logAttrDurationMS, es.toMilliseconds(duration))
	observer.finishQuerySuccess(len(documents), duration)

	return documents, nil
}

// Count returns the number of documents of the given entity type whose
// payload satisfies the expression tree. A nil where tree counts all
// documents of the entity type.
func (es *EntityStore) Count(
	ctx context.Context,
	entityType string,
	where specification.TreeNode,
) (uint, error) {

	observer, ctx := es.startOperation(ctx, operationCount, entityType)

	sqlQuery, buildQueryErr := es.buildCountQuery(entityType, where)
	if buildQueryErr != nil {
		es.logError(logMsgBuildCountQueryFailed, buildQueryErr)
		es.logErrorContext(ctx, logMsgBuildCountQueryFailed, buildQueryErr)
		observer.finishError(errorTypeBuildQuery, 0)

		return 0, buildQueryErr
	}

	rows, duration, queryErr := es.executeQuery(ctx, sqlQuery, logActionCount)
	if queryErr != nil {
		observer.finishError(errorTypeDatabase, duration)

		return 0, queryErr
	}
	defer es.closeRows(rows)

	var count uint

	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			es.logError(logMsgScanRowFailed, scanErr)
			es.logErrorContext(ctx, logMsgScanRowFailed, scanErr)
			observer.finishError(errorTypeScanRow, duration)

			return 0, errors.Join(specification.ErrScanningDBRowFailed, scanErr)
		}
	}

	es.logOperation(logMsgCountCompleted,
		logAttrEntityType, entityType,
		logAttrDocumentCount, count,
		logAttrDurationMS, es.toMilliseconds(duration))
	es.logOperationContext(ctx, logMsgCountCompleted,
		logAttrEntityType, entityType,
		logAttrDocumentCount, count,
		logAttrDurationMS, es.toMilliseconds(duration))
	observer.finishQuerySuccess(int(count), duration)

	return count, nil
}

// Insert stores one or multiple specification.StorableDocument(s) in the
// documents table.
func (es *EntityStore) Insert(
	ctx context.Context,
	document specification.StorableDocument,
	additionalDocuments ...specification.StorableDocument,
) error {

	allDocuments := specification.StorableDocuments{document}
	allDocuments = append(allDocuments, additionalDocuments...)

	observer, ctx := es.startOperation(ctx, operationInsert, document.EntityType)

	sqlQuery, buildQueryErr := es.buildInsertQuery(allDocuments)
	if buildQueryErr != nil {
		es.logError(logMsgBuildInsertQueryFailed, buildQueryErr, logAttrDocumentCount, len(allDocuments))
		es.logErrorContext(ctx, logMsgBuildInsertQueryFailed, buildQueryErr, logAttrDocumentCount, len(allDocuments))
		observer.finishError(errorTypeBuildQuery, 0)

		return buildQueryErr
	}

	rowsAffected, duration, execErr := es.executeInsert(ctx, sqlQuery)
	if execErr != nil {
		observer.finishError(errorTypeDatabase, duration)

		return execErr
	}

	es.logOperation(logMsgDocumentsInserted,
		logAttrDocumentCount, len(allDocuments),
		logAttrRowsAffected, rowsAffected,
		logAttrDurationMS, es.toMilliseconds(duration))
	es.logOperationContext(ctx, logMsgDocumentsInserted,
		logAttrDocumentCount, len(allDocuments),
		logAttrRowsAffected, rowsAffected,
		logAttrDurationMS, es.toMilliseconds(duration))
	observer.finishInsertSuccess(len(allDocuments), duration)

	return nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (es *EntityStore) executeQuery(ctx context.Context, sqlQuery string, action string) (
	adapters.DBRows,
	time.Duration,
	error,
) {

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(sqlQuery, action, duration)
	es.logQueryWithDurationContext(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		es.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		es.logErrorContext(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)

		return nil, duration, errors.Join(specification.ErrQueryingDocumentsFailed, queryErr)
	}

	return rows, duration, nil
}

// executeInsert executes the SQL insert and returns rows affected and duration.
func (es *EntityStore) executeInsert(ctx context.Context, sqlQuery string) (
	rowsAffectedInt64,
	time.Duration,
	error,
) {

	start := time.Now()
	result, execErr := es.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(sqlQuery, logActionInsert, duration)
	es.logQueryWithDurationContext(ctx, sqlQuery, logActionInsert, duration)

	if execErr != nil {
		es.logError(logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		es.logErrorContext(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return 0, duration, errors.Join(specification.ErrInsertingDocumentsFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		es.logError(logMsgRowsAffectedFailed, rowsAffectedErr)
		es.logErrorContext(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)

		return 0, duration, errors.Join(specification.ErrInsertingDocumentsFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (es *EntityStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if es.logger != nil {
			es.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// scanDocuments processes database rows and converts them to storable documents.
func (es *EntityStore) scanDocuments(ctx context.Context, rows adapters.DBRows) (
	specification.StorableDocuments,
	error,
) {

	var empty specification.StorableDocuments
	documents := make(specification.StorableDocuments, 0)

	var (
		idText     string
		entityType string
		payload    []byte
	)

	for rows.Next() {
		if rowScanErr := rows.Scan(&idText, &entityType, &payload); rowScanErr != nil {
			es.logError(logMsgScanRowFailed, rowScanErr)
			es.logErrorContext(ctx, logMsgScanRowFailed, rowScanErr)

			return empty, errors.Join(specification.ErrScanningDBRowFailed, rowScanErr)
		}

		id, parseErr := uuid.Parse(idText)
		if parseErr != nil {
			es.logError(logMsgScanRowFailed, parseErr)
			es.logErrorContext(ctx, logMsgScanRowFailed, parseErr)

			return empty, errors.Join(specification.ErrScanningDBRowFailed, parseErr)
		}

		document, buildErr := specification.BuildStorableDocument(id, entityType, payload)
		if buildErr != nil {
			es.logError(logMsgBuildDocumentFailed, buildErr, logAttrEntityType, entityType)
			es.logErrorContext(ctx, logMsgBuildDocumentFailed, buildErr, logAttrEntityType, entityType)

			return empty, errors.Join(specification.ErrScanningDBRowFailed, buildErr)
		}

		documents = append(documents, document)
	}

	return documents, nil
}

func (es *EntityStore) buildSelectQuery(entityType string, where specification.TreeNode) (sqlQueryString, error) {
	if entityType == "" {
		return "", specification.ErrEmptyEntityType
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.tableName).
		Select(goqu.L(colID+"::text"), goqu.C(colEntityType), goqu.C(colPayload)).
		Order(goqu.I(colID).Asc())

	selectStmt, whereErr := es.addWhereClause(selectStmt, entityType, where)
	if whereErr != nil {
		return "", whereErr
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(specification.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EntityStore) buildCountQuery(entityType string, where specification.TreeNode) (sqlQueryString, error) {
	if entityType == "" {
		return "", specification.ErrEmptyEntityType
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.tableName).
		Select(goqu.COUNT(goqu.Star()))

	selectStmt, whereErr := es.addWhereClause(selectStmt, entityType, where)
	if whereErr != nil {
		return "", whereErr
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(specification.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EntityStore) buildInsertQuery(documents specification.StorableDocuments) (sqlQueryString, error) {
	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(es.tableName).
		Cols(colID, colEntityType, colPayload)

	for _, document := range documents {
		if document.EntityType == "" {
			return "", specification.ErrEmptyEntityType
		}

		insertStmt = insertStmt.Vals(goqu.Vals{
			document.ID.String(),
			document.EntityType,
			goqu.L(castJsonb, string(document.PayloadJSON)),
		})
	}

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(specification.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EntityStore) addWhereClause(
	selectStmt *goqu.SelectDataset,
	entityType string,
	where specification.TreeNode,
) (*goqu.SelectDataset, error) {

	typeExpression := goqu.Ex{colEntityType: entityType}

	if where == nil {
		return selectStmt.Where(typeExpression), nil
	}

	whereExpression, translateErr := whereFromTree(where, colPayload, 0)
	if translateErr != nil {
		return nil, translateErr
	}

	return selectStmt.Where(goqu.And(typeExpression, whereExpression)), nil
}
