package delegation

import (
	"context"

	"github.com/digdir/accessgraph/id"
)

// Store defines persistence operations for delegations and their package
// attachments.
type Store interface {
	// CreateDelegation persists a new delegation.
	CreateDelegation(ctx context.Context, d *Delegation) error

	// GetDelegation retrieves a delegation by ID.
	GetDelegation(ctx context.Context, delegationID id.ID) (*Delegation, error)

	// DeleteDelegation removes a delegation by ID. Cascade guards run in
	// the caller.
	DeleteDelegation(ctx context.Context, delegationID id.ID) error

	// ListDelegations returns delegations matching the filter.
	ListDelegations(ctx context.Context, filter *ListFilter) ([]*Delegation, error)

	// ListDelegationsForAssignment returns delegations referencing the
	// assignment on either end. Used by the assignment delete guard.
	ListDelegationsForAssignment(ctx context.Context, assignmentID id.ID) ([]*Delegation, error)

	// AddDelegationPackage attaches a package to a delegation.
	AddDelegationPackage(ctx context.Context, dp *Package) error

	// RemoveDelegationPackage detaches a package from a delegation.
	RemoveDelegationPackage(ctx context.Context, delegationID, packageID id.ID) error

	// ListDelegationPackages returns the package attachments of a delegation.
	ListDelegationPackages(ctx context.Context, delegationID id.ID) ([]*Package, error)
}
