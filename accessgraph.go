// Package accessgraph provides the delegation and policy authorization core
// for a government digital-services platform: who may act on whose behalf,
// for which resource, and the recorded grants that decide it.
//
// Grants come in two shapes. An Assignment is a direct role grant from one
// party to another. A Delegation forwards rights between assignments
// through a facilitator party. The Engine is the composition point: it
// resolves the acting party's held connections, matches them against the
// policy decomposer's classification, and answers allow/deny with a full
// reason trail.
//
//	eng, err := accessgraph.NewEngine(
//	    accessgraph.WithStore(memStore),
//	)
//	results, err := eng.CheckPackageAssignment(ctx, &accessgraph.PackageCheckRequest{
//	    PartyID:      party,
//	    ActorID:      actor,
//	    PackageNames: []string{"urn:altinn:accesspackage:regnskap"},
//	})
package accessgraph

import (
	"github.com/digdir/accessgraph/accesspackage"
	"github.com/digdir/accessgraph/id"
	"github.com/digdir/accessgraph/resource"
)

// Decision is the outcome of a gate check.
type Decision string

const (
	// DecisionAllow means the requested grant is permitted.
	DecisionAllow Decision = "allow"

	// DecisionDeny means no held connection reaches the requested grant.
	DecisionDeny Decision = "deny"

	// DecisionDenyNotAssignable means the package or resource itself
	// refuses assignment, regardless of the caller's rights.
	DecisionDenyNotAssignable Decision = "deny_not_assignable"

	// DecisionDenyAccessList means access list gating blocked the request.
	DecisionDenyAccessList Decision = "deny_access_list"
)

// DelegationCheckReason explains one leg of a gate verdict: the role that
// provides (or would provide) access, the parties on the edge, and the
// key-role "via" chain when access is inherited through an intermediary.
// Callers surface why access was decided, not just that it was.
type DelegationCheckReason struct {
	Description string `json:"description"`
	RoleID      id.ID  `json:"role_id,omitempty"`
	RoleURN     string `json:"role_urn,omitempty"`
	FromID      id.ID  `json:"from_id,omitempty"`
	ToID        id.ID  `json:"to_id,omitempty"`
	ViaID       id.ID  `json:"via_id,omitempty"`
	ViaRoleID   id.ID  `json:"via_role_id,omitempty"`
	ViaRoleURN  string `json:"via_role_urn,omitempty"`
}

// PackageCheckRequest asks whether the actor, acting for the party, may
// assign the named access packages.
type PackageCheckRequest struct {
	PartyID      id.ID    `json:"party_id"` // party whose rights are delegated
	ActorID      id.ID    `json:"actor_id"` // user performing the action
	PackageNames []string `json:"package_names"`
}

// PackageCheckResult is the verdict for a single package.
type PackageCheckResult struct {
	Package *accesspackage.Package  `json:"package"`
	Allowed bool                    `json:"allowed"`
	Reasons []DelegationCheckReason `json:"reasons,omitempty"`
}

// ResourceCheckRequest asks whether the actor, acting for the party, may
// delegate the referenced resources.
type ResourceCheckRequest struct {
	PartyID      id.ID    `json:"party_id"`
	ActorID      id.ID    `json:"actor_id"`
	ResourceRefs []string `json:"resource_refs"`

	// AccessListedRefs are resource refs for which the acting party is
	// pre-approved. Membership itself is resolved by the resource registry
	// collaborator; the gate only applies the gating rule.
	AccessListedRefs []string `json:"access_listed_refs,omitempty"`
}

// ResourceCheckResult is the verdict for a single resource.
type ResourceCheckResult struct {
	Resource *resource.Resource      `json:"resource"`
	Allowed  bool                    `json:"allowed"`
	Reasons  []DelegationCheckReason `json:"reasons,omitempty"`
}
