package role

import (
	"context"

	"github.com/digdir/accessgraph/id"
)

// Store defines persistence operations for roles and role→package links.
type Store interface {
	// CreateRole persists a new role. The URN must be globally unique and
	// (EntityTypeID, Code) unique within the type.
	CreateRole(ctx context.Context, r *Role) error

	// GetRole retrieves a role by ID.
	GetRole(ctx context.Context, roleID id.ID) (*Role, error)

	// GetRoleByURN retrieves a role by its URN.
	GetRoleByURN(ctx context.Context, urn string) (*Role, error)

	// GetRoleByCode retrieves a role by entity type and code.
	GetRoleByCode(ctx context.Context, entityTypeID id.ID, code string) (*Role, error)

	// UpdateRole persists changes to a role.
	UpdateRole(ctx context.Context, r *Role) error

	// DeleteRole removes a role by ID. Cascade guards run in the caller.
	DeleteRole(ctx context.Context, roleID id.ID) error

	// ListRoles returns roles matching the filter.
	ListRoles(ctx context.Context, filter *ListFilter) ([]*Role, error)

	// AttachPackage links an access package to a role.
	AttachPackage(ctx context.Context, rp *Package) error

	// DetachPackage removes a package link from a role.
	DetachPackage(ctx context.Context, roleID, packageID id.ID) error

	// ListRolePackages returns the package links of a role.
	ListRolePackages(ctx context.Context, roleID id.ID) ([]*Package, error)

	// ListPackageRoles returns the roles granting a package.
	ListPackageRoles(ctx context.Context, packageID id.ID) ([]*Package, error)
}
