package accessgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/digdir/accessgraph/id"
	"github.com/digdir/accessgraph/policy"
	"github.com/digdir/accessgraph/store"
)

// ClassifyAccess sorts each decomposed action's accessor URNs into the
// allow/deny buckets for the acting pair: an accessor the actor can satisfy
// through a held connection goes into the allow bucket of its kind, the rest
// into deny. The input slice is not mutated.
func (e *Engine) ClassifyAccess(ctx context.Context, partyID, actorID id.ID, accesses []policy.ActionAccess) ([]policy.ActionAccess, error) {
	held, err := e.heldURNs(ctx, partyID, actorID)
	if err != nil {
		return nil, fmt.Errorf("accessgraph classify: %w", err)
	}

	out := make([]policy.ActionAccess, len(accesses))
	for i, aa := range accesses {
		c := policy.ActionAccess{ActionKey: aa.ActionKey, AccessorUrns: aa.AccessorUrns}
		for _, urn := range aa.AccessorUrns {
			switch {
			case strings.HasPrefix(urn, policy.AccessPackageAttribute):
				if held[urn] {
					c.PackageAllowAccess = append(c.PackageAllowAccess, urn)
				} else {
					c.PackageDenyAccess = append(c.PackageDenyAccess, urn)
				}
			case strings.HasPrefix(urn, policy.RoleAttribute),
				strings.HasPrefix(urn, policy.ExternalCCRRoleAttribute),
				strings.HasPrefix(urn, policy.ExternalCRARoleAttribute):
				if held[urn] {
					c.RoleAllowAccess = append(c.RoleAllowAccess, urn)
				} else {
					c.RoleDenyAccess = append(c.RoleDenyAccess, urn)
				}
			default:
				if held[urn] {
					c.ResourceAllowAccess = append(c.ResourceAllowAccess, urn)
				} else {
					c.ResourceDenyAccess = append(c.ResourceDenyAccess, urn)
				}
			}
		}
		out[i] = c
	}
	return out, nil
}

// heldURNs resolves the URNs the actor can exercise for the party: the URNs
// of the roles on its connections and of every package those connections
// grant, whether through role links or direct attachments.
func (e *Engine) heldURNs(ctx context.Context, partyID, actorID id.ID) (map[string]bool, error) {
	conns, err := e.Connections(ctx, partyID, actorID)
	if err != nil {
		return nil, err
	}

	held := make(map[string]bool)
	seenRole := make(map[id.ID]bool)
	for _, c := range conns {
		if !seenRole[c.RoleID] {
			seenRole[c.RoleID] = true
			r, err := e.store.GetRole(ctx, c.RoleID)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					return nil, err
				}
			} else {
				held[r.URN] = true
			}
			links, err := e.store.ListRolePackages(ctx, c.RoleID)
			if err != nil {
				return nil, err
			}
			for _, l := range links {
				if !l.HasAccess {
					continue
				}
				if err := e.markPackageURN(ctx, held, l.PackageID); err != nil {
					return nil, err
				}
			}
		}

		aps, err := e.store.ListAssignmentPackages(ctx, c.AssignmentID)
		if err != nil {
			return nil, err
		}
		for _, ap := range aps {
			if err := e.markPackageURN(ctx, held, ap.PackageID); err != nil {
				return nil, err
			}
		}
		if !c.DelegationID.IsNil() {
			dps, err := e.store.ListDelegationPackages(ctx, c.DelegationID)
			if err != nil {
				return nil, err
			}
			for _, dp := range dps {
				if err := e.markPackageURN(ctx, held, dp.PackageID); err != nil {
					return nil, err
				}
			}
		}
	}
	return held, nil
}

func (e *Engine) markPackageURN(ctx context.Context, held map[string]bool, packageID id.ID) error {
	p, err := e.store.GetPackage(ctx, packageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	held[p.URN] = true
	return nil
}
