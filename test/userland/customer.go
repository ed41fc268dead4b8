// Package userland contains the example domain used by the test suites.
// It plays the role of client code: a plain entity type, caller-defined leaf
// specifications implementing only the Specification capability, and the
// serialization shell that turns entities into storable documents.
package userland

import (
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/specql/composable-specs-go/specification"
)

const CustomerEntityType = "customer"

// Order is a nested item of Customer, used to exercise the quantifiers over
// object-valued collections.
type Order struct {
	Total  float64 `json:"total"`
	Status string  `json:"status"`
}

// Customer is the example entity. Name is a pointer on purpose: the
// pattern-match tests need a property that can be absent.
type Customer struct {
	ID     uuid.UUID `json:"id"`
	Name   *string   `json:"name"`
	Status string    `json:"status"`
	Tags   []string  `json:"tags"`
	Orders []Order   `json:"orders"`
}

// Named is a small helper for building customers with a present name.
func Named(name string) *string {
	return &name
}

// ToStorableDocument serializes a Customer into the DTO the entity store
// consumes.
func ToStorableDocument(customer Customer) (specification.StorableDocument, error) {
	payloadJSON, marshalErr := jsoniter.ConfigFastest.Marshal(customer)
	if marshalErr != nil {
		return specification.StorableDocument{}, marshalErr
	}

	return specification.BuildStorableDocument(customer.ID, CustomerEntityType, payloadJSON)
}
