package accessgraph

import (
	"context"

	"github.com/digdir/accessgraph/id"
)

// Cache provides caching for gate check verdicts. Both check kinds key on
// the (party, actor) pair plus the requested refs, so invalidating a party
// drops every verdict its grants could have influenced.
type Cache interface {
	// GetPackageCheck returns cached package verdicts, if available.
	GetPackageCheck(ctx context.Context, req *PackageCheckRequest) ([]*PackageCheckResult, bool)

	// SetPackageCheck stores package verdicts in the cache.
	SetPackageCheck(ctx context.Context, req *PackageCheckRequest, results []*PackageCheckResult)

	// GetResourceCheck returns cached resource verdicts, if available.
	GetResourceCheck(ctx context.Context, req *ResourceCheckRequest) ([]*ResourceCheckResult, bool)

	// SetResourceCheck stores resource verdicts in the cache.
	SetResourceCheck(ctx context.Context, req *ResourceCheckRequest, results []*ResourceCheckResult)

	// InvalidateParty removes all cached verdicts where the party appears on
	// either side of the check.
	InvalidateParty(ctx context.Context, partyID id.ID)
}
