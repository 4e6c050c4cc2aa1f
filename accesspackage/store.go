package accesspackage

import (
	"context"

	"github.com/digdir/accessgraph/id"
)

// Store defines persistence operations for access packages and areas.
type Store interface {
	// CreatePackage persists a new package. The URN must be unique.
	CreatePackage(ctx context.Context, p *Package) error

	// GetPackage retrieves a package by ID.
	GetPackage(ctx context.Context, packageID id.ID) (*Package, error)

	// GetPackageByURN retrieves a package by its URN.
	GetPackageByURN(ctx context.Context, urn string) (*Package, error)

	// UpdatePackage persists changes to a package.
	UpdatePackage(ctx context.Context, p *Package) error

	// DeletePackage removes a package by ID. Cascade guards run in the caller.
	DeletePackage(ctx context.Context, packageID id.ID) error

	// ListPackages returns packages matching the filter.
	ListPackages(ctx context.Context, filter *ListFilter) ([]*Package, error)

	// CreateArea persists a new area.
	CreateArea(ctx context.Context, a *Area) error

	// GetArea retrieves an area by ID.
	GetArea(ctx context.Context, areaID id.ID) (*Area, error)

	// ListAreas returns all areas.
	ListAreas(ctx context.Context) ([]*Area, error)
}
