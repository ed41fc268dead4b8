package specification

import (
	"errors"
)

// Construction errors. These surface as panics because passing a nil operand
// or a malformed pattern to a constructor is a programming error, never a
// runtime condition - the failure must happen at the construction site, not
// later during evaluation.
var ErrNilSpecification = errors.New("nil specification supplied as operand")
var ErrNilPropertySelector = errors.New("nil property selector supplied")
var ErrNilPredicate = errors.New("nil predicate function supplied")
var ErrInvalidPattern = errors.New("pattern is not a valid regular expression")
var ErrUnknownNodeKind = errors.New("unknown expression node kind")

// Errors shared with query provider implementations.
var ErrUntranslatableExpression = errors.New("expression tree contains a node that cannot be translated")
var ErrBuildingQueryFailed = errors.New("building the database query failed")
var ErrQueryingDocumentsFailed = errors.New("querying documents failed")
var ErrInsertingDocumentsFailed = errors.New("inserting documents failed")
var ErrScanningDBRowFailed = errors.New("scanning a database row failed")
var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrEmptyDocumentsTableName = errors.New("empty documents table name supplied")
