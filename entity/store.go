package entity

import (
	"context"

	"github.com/digdir/accessgraph/id"
)

// Store defines persistence operations for entities and their taxonomies.
// Lookups return a wrapped not-found sentinel rather than panicking, so
// validation rule factories can build absence errors from a nil result.
type Store interface {
	// CreateEntity persists a new entity. The (Name, TypeID, RefID) triple
	// must be unique.
	CreateEntity(ctx context.Context, e *Entity) error

	// GetEntity retrieves an entity by ID.
	GetEntity(ctx context.Context, entityID id.ID) (*Entity, error)

	// GetEntityByRef retrieves an entity by its external reference within a type.
	GetEntityByRef(ctx context.Context, typeID id.ID, refID string) (*Entity, error)

	// UpdateEntity persists name/variant corrections. Type and RefID are fixed.
	UpdateEntity(ctx context.Context, e *Entity) error

	// ListEntities returns entities matching the filter.
	ListEntities(ctx context.Context, filter *ListFilter) ([]*Entity, error)

	// CreateEntityType persists a new entity type.
	CreateEntityType(ctx context.Context, t *Type) error

	// GetEntityType retrieves an entity type by ID.
	GetEntityType(ctx context.Context, typeID id.ID) (*Type, error)

	// GetEntityTypeByName retrieves an entity type by name.
	GetEntityTypeByName(ctx context.Context, name string) (*Type, error)

	// ListEntityTypes returns all entity types.
	ListEntityTypes(ctx context.Context) ([]*Type, error)

	// CreateEntityVariant persists a new entity variant.
	CreateEntityVariant(ctx context.Context, v *Variant) error

	// GetEntityVariant retrieves an entity variant by ID.
	GetEntityVariant(ctx context.Context, variantID id.ID) (*Variant, error)

	// ListEntityVariants returns the variants belonging to a type.
	ListEntityVariants(ctx context.Context, typeID id.ID) ([]*Variant, error)
}
