// Package assignment defines the Assignment entity: a direct role grant
// from one party to another.
package assignment

import (
	"time"

	"github.com/digdir/accessgraph/id"
)

// Assignment is a direct grant edge FromID → ToID carrying one role.
// The (FromID, ToID, RoleID) triple is unique: a party never holds the same
// role twice over the same grantor. IDs are UUIDv7-based and time-ordered,
// so assignment rows sort by creation.
type Assignment struct {
	ID        id.ID     `json:"id" db:"id"`
	FromID    id.ID     `json:"from_id" db:"from_id"`
	ToID      id.ID     `json:"to_id" db:"to_id"`
	RoleID    id.ID     `json:"role_id" db:"role_id"`
	GrantedBy id.ID     `json:"granted_by,omitempty" db:"granted_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Package attaches a specific access package's rights to an assignment,
// the "what" layered on the "who/role" edge.
type Package struct {
	ID           id.ID     `json:"id" db:"id"`
	AssignmentID id.ID     `json:"assignment_id" db:"assignment_id"`
	PackageID    id.ID     `json:"package_id" db:"package_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing assignments.
type ListFilter struct {
	FromID *id.ID `json:"from_id,omitempty"`
	ToID   *id.ID `json:"to_id,omitempty"`
	RoleID *id.ID `json:"role_id,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
