package resource

import (
	"context"

	"github.com/digdir/accessgraph/id"
)

// Store defines persistence operations for resources, providers, types and
// package↔resource links.
type Store interface {
	// CreateResource persists a new resource. RefID must be unique.
	CreateResource(ctx context.Context, r *Resource) error

	// GetResource retrieves a resource by ID.
	GetResource(ctx context.Context, resourceID id.ID) (*Resource, error)

	// GetResourceByRef retrieves a resource by its registry reference.
	GetResourceByRef(ctx context.Context, refID string) (*Resource, error)

	// GetResourceExtended retrieves a resource joined with provider and type.
	GetResourceExtended(ctx context.Context, resourceID id.ID) (*Extended, error)

	// UpdateResource persists changes to a resource.
	UpdateResource(ctx context.Context, r *Resource) error

	// DeleteResource removes a resource by ID.
	DeleteResource(ctx context.Context, resourceID id.ID) error

	// ListResources returns resources matching the filter.
	ListResources(ctx context.Context, filter *ListFilter) ([]*Resource, error)

	// CreateResourceType persists a new resource type.
	CreateResourceType(ctx context.Context, t *Type) error

	// GetResourceType retrieves a resource type by ID.
	GetResourceType(ctx context.Context, typeID id.ID) (*Type, error)

	// CreateProvider persists a new provider.
	CreateProvider(ctx context.Context, p *Provider) error

	// GetProvider retrieves a provider by ID.
	GetProvider(ctx context.Context, providerID id.ID) (*Provider, error)

	// LinkPackageResource attaches a resource to a package.
	LinkPackageResource(ctx context.Context, packageID, resourceID id.ID) error

	// UnlinkPackageResource detaches a resource from a package.
	UnlinkPackageResource(ctx context.Context, packageID, resourceID id.ID) error

	// ListPackageResources returns the resources attached to a package.
	ListPackageResources(ctx context.Context, packageID id.ID) ([]*Resource, error)

	// ListResourcePackages returns the package IDs a resource belongs to.
	ListResourcePackages(ctx context.Context, resourceID id.ID) ([]id.ID, error)
}
