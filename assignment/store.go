package assignment

import (
	"context"

	"github.com/digdir/accessgraph/id"
)

// Store defines persistence operations for assignments and their package
// attachments. Deleting an assignment is blocked while packages or
// delegations still reference it; the cascade guards run in the caller and
// use these lookups.
type Store interface {
	// CreateAssignment persists a new assignment. A duplicate
	// (FromID, ToID, RoleID) edge is rejected.
	CreateAssignment(ctx context.Context, a *Assignment) error

	// GetAssignment retrieves an assignment by ID.
	GetAssignment(ctx context.Context, assignmentID id.ID) (*Assignment, error)

	// GetAssignmentByEdge retrieves the assignment for a (from, to, role) edge.
	GetAssignmentByEdge(ctx context.Context, fromID, toID, roleID id.ID) (*Assignment, error)

	// DeleteAssignment removes an assignment by ID.
	DeleteAssignment(ctx context.Context, assignmentID id.ID) error

	// ListAssignments returns assignments matching the filter.
	ListAssignments(ctx context.Context, filter *ListFilter) ([]*Assignment, error)

	// AddAssignmentPackage attaches a package to an assignment.
	AddAssignmentPackage(ctx context.Context, ap *Package) error

	// RemoveAssignmentPackage detaches a package from an assignment.
	RemoveAssignmentPackage(ctx context.Context, assignmentID, packageID id.ID) error

	// ListAssignmentPackages returns the package attachments of an assignment.
	ListAssignmentPackages(ctx context.Context, assignmentID id.ID) ([]*Package, error)
}
