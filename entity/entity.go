// Package entity defines the Entity (party) record and its closed
// type/variant taxonomies.
package entity

import (
	"time"

	"github.com/digdir/accessgraph/id"
)

// Well-known entity type names. The taxonomy is closed and rarely changes;
// these are the names the delegation rules key on.
const (
	TypeOrganization = "Organisasjon"
	TypePerson       = "Person"
	TypeInternal     = "Intern"
	TypeSystemUser   = "Systembruker"
)

// Entity is a party in the authorization graph: an organization, a person,
// an internal sub-unit, or a system user. Entities are created on
// registration and immutable thereafter except for name and variant
// corrections.
type Entity struct {
	ID        id.ID     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	TypeID    id.ID     `json:"type_id" db:"type_id"`
	VariantID id.ID     `json:"variant_id" db:"variant_id"`
	RefID     string    `json:"ref_id" db:"ref_id"` // external reference, e.g. org number
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Type is a top-level party classification (Organisasjon, Person, ...).
type Type struct {
	ID   id.ID  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Variant is a sub-classification belonging to exactly one Type
// (e.g. "AS" under Organisasjon).
type Variant struct {
	ID          id.ID  `json:"id" db:"id"`
	TypeID      id.ID  `json:"type_id" db:"type_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

// ListFilter contains filters for listing entities.
type ListFilter struct {
	TypeID    *id.ID `json:"type_id,omitempty"`
	VariantID *id.ID `json:"variant_id,omitempty"`
	RefID     string `json:"ref_id,omitempty"`
	Search    string `json:"search,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}
