// Package role defines the Role entity: a named capability one party can
// hold over another.
package role

import (
	"time"

	"github.com/digdir/accessgraph/id"
)

// Role is a named capability a party can hold over another party.
// The URN is globally unique; (EntityTypeID, Code) is unique within a type.
type Role struct {
	ID           id.ID     `json:"id" db:"id"`
	EntityTypeID id.ID     `json:"entity_type_id" db:"entity_type_id"`
	Code         string    `json:"code" db:"code"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description,omitempty" db:"description"`
	URN          string    `json:"urn" db:"urn"`
	IsKeyRole    bool      `json:"is_key_role" db:"is_key_role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Package links a role to an access package the role grants.
// CanDelegate marks whether holders of the role may pass the package on.
type Package struct {
	RoleID      id.ID `json:"role_id" db:"role_id"`
	PackageID   id.ID `json:"package_id" db:"package_id"`
	HasAccess   bool  `json:"has_access" db:"has_access"`
	CanDelegate bool  `json:"can_delegate" db:"can_delegate"`
}

// ListFilter contains filters for listing roles.
type ListFilter struct {
	EntityTypeID *id.ID `json:"entity_type_id,omitempty"`
	Code         string `json:"code,omitempty"`
	KeyRolesOnly bool   `json:"key_roles_only,omitempty"`
	Search       string `json:"search,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}
