package specification

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var ErrInvalidDocumentJSON = errors.New("document payload json is not valid")
var ErrEmptyEntityType = errors.New("entity type must not be empty")

// StorableDocuments is an alias type for a slice of StorableDocument.
type StorableDocuments = []StorableDocument

// StorableDocument is a DTO (data transfer object) used by query provider
// implementations to insert entities and query them back by specification.
//
// It is built on scalars and raw JSON to stay completely agnostic of how
// entities are modelled in client code.
//
// While its properties are exported, it should only be constructed with the
// supplied factory method BuildStorableDocument.
type StorableDocument struct {
	ID          uuid.UUID
	EntityType  string
	PayloadJSON []byte
}

// BuildStorableDocument is a factory method for StorableDocument.
//
// It returns an error if entityType is empty or payloadJSON is not valid JSON.
func BuildStorableDocument(id uuid.UUID, entityType string, payloadJSON []byte) (StorableDocument, error) {
	if entityType == "" {
		return StorableDocument{}, ErrEmptyEntityType
	}

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return StorableDocument{}, ErrInvalidDocumentJSON
	}

	return StorableDocument{
		ID:          id,
		EntityType:  entityType,
		PayloadJSON: payloadJSON,
	}, nil
}
