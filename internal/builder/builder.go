package builder

import (
	"fmt"

	"flowcanvas/internal/catalog"
	"flowcanvas/internal/domain"
)

// SchemaSource looks up operator schemas
type SchemaSource interface {
	Lookup(operatorType string) (catalog.OperatorSchema, bool)
}

// Builder creates operators with fresh ids
type Builder struct {
	ids     IDGenerator
	schemas SchemaSource
}

// New returns a Builder. A nil generator falls back to a SequenceGenerator.
func New(ids IDGenerator, schemas SchemaSource) *Builder {
	if ids == nil {
		ids = NewSequenceGenerator("")
	}
	return &Builder{ids: ids, schemas: schemas}
}

// NextAvailableID returns a fresh operator id
func (b *Builder) NextAvailableID() string {
	return b.ids.Next()
}

// NewOperator creates an operator of the given type with empty properties
// and the port counts the catalog currently lists for that type
func (b *Builder) NewOperator(operatorType string) (domain.Operator, error) {
	schema, ok := b.schemas.Lookup(operatorType)
	if !ok {
		return domain.Operator{}, fmt.Errorf("new operator %q: %w", operatorType, domain.ErrUnknownOperatorType)
	}
	return domain.NewOperator(b.NextAvailableID(), operatorType, schema.InputPortIDs(), schema.OutputPortIDs()), nil
}
