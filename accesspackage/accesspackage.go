// Package accesspackage defines the access Package entity: a bundle of
// rights over resources, grouped into taxonomy areas.
package accesspackage

import (
	"time"

	"github.com/digdir/accessgraph/id"
)

// MainAdministratorURN is the reserved package that may never be assigned
// to an organization recipient, only to persons acting for one.
const MainAdministratorURN = "urn:altinn:accesspackage:hovedadministrator"

// Package is a bundle of permissions/resources, scoped to a taxonomy Area
// and the entity type it targets.
type Package struct {
	ID           id.ID     `json:"id" db:"id"`
	AreaID       id.ID     `json:"area_id" db:"area_id"`
	EntityTypeID id.ID     `json:"entity_type_id" db:"entity_type_id"`
	Name         string    `json:"name" db:"name"`
	URN          string    `json:"urn" db:"urn"`
	Description  string    `json:"description,omitempty" db:"description"`
	IsAssignable bool      `json:"is_assignable" db:"is_assignable"`
	IsDelegable  bool      `json:"is_delegable" db:"is_delegable"`
	HasResources bool      `json:"has_resources" db:"has_resources"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Area is a taxonomy grouping of packages (e.g. "Skatt og avgift").
type Area struct {
	ID          id.ID  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	IconURN     string `json:"icon_urn,omitempty" db:"icon_urn"`
}

// ListFilter contains filters for listing packages.
type ListFilter struct {
	AreaID         *id.ID   `json:"area_id,omitempty"`
	EntityTypeID   *id.ID   `json:"entity_type_id,omitempty"`
	Names          []string `json:"names,omitempty"`
	URNs           []string `json:"urns,omitempty"`
	AssignableOnly bool     `json:"assignable_only,omitempty"`
	Search         string   `json:"search,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Offset         int      `json:"offset,omitempty"`
}
