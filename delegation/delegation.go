// Package delegation defines the Delegation entity: rights forwarded
// between assignments through a facilitator party.
package delegation

import (
	"time"

	"github.com/digdir/accessgraph/id"
)

// Delegation is a conditional, chained grant. Rights that the From
// assignment carries are made usable through the To assignment, connected
// by the Facilitator party. It is the "forwarded/relayed rights" edge, as
// opposed to the direct role grant an Assignment represents.
type Delegation struct {
	ID            id.ID     `json:"id" db:"id"`
	FromID        id.ID     `json:"from_id" db:"from_id"` // assignment providing the rights
	ToID          id.ID     `json:"to_id" db:"to_id"`     // assignment receiving the rights
	FacilitatorID id.ID     `json:"facilitator_id" db:"facilitator_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Package attaches a specific access package to a delegation.
type Package struct {
	ID           id.ID     `json:"id" db:"id"`
	DelegationID id.ID     `json:"delegation_id" db:"delegation_id"`
	PackageID    id.ID     `json:"package_id" db:"package_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Connection is the read-side union of assignments and delegations: one
// resolved path by which a party can act for another. It is computed per
// query, never persisted.
type Connection struct {
	FromID       id.ID `json:"from_id"` // party whose rights are reachable
	ToID         id.ID `json:"to_id"`   // party holding the access
	RoleID       id.ID `json:"role_id"`
	AssignmentID id.ID `json:"assignment_id"`
	DelegationID id.ID `json:"delegation_id,omitempty"` // set when reached through a delegation
	ViaID        id.ID `json:"via_id,omitempty"`        // intermediary party for key-role access
	ViaRoleID    id.ID `json:"via_role_id,omitempty"`   // key role held over the intermediary
}

// Direct reports whether the connection is a plain assignment edge with no
// facilitator or key-role hop.
func (c *Connection) Direct() bool {
	return c.DelegationID.IsNil() && c.ViaID.IsNil()
}

// ListFilter contains filters for listing delegations.
type ListFilter struct {
	FromID        *id.ID `json:"from_id,omitempty"`
	ToID          *id.ID `json:"to_id,omitempty"`
	FacilitatorID *id.ID `json:"facilitator_id,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}
