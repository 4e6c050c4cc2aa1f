package accessgraph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/digdir/accessgraph/accesspackage"
	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/delegation"
	"github.com/digdir/accessgraph/entity"
	"github.com/digdir/accessgraph/id"
	"github.com/digdir/accessgraph/role"
	"github.com/digdir/accessgraph/store"
	"github.com/digdir/accessgraph/validation"
)

// GrantPackageRequest asks to attach access packages to the (from, to, role)
// edge, creating the assignment if the edge does not exist yet.
type GrantPackageRequest struct {
	FromID       id.ID    `json:"from_id"` // party granting access
	ToID         id.ID    `json:"to_id"`   // recipient party
	RoleID       id.ID    `json:"role_id"`
	PackageNames []string `json:"package_names"`

	// GrantedBy is the acting user. When set, the grant is authorized
	// against the user's own delegable access for FromID.
	GrantedBy id.ID `json:"granted_by,omitempty"`
}

// DelegationRequest asks to forward rights between two assignments through
// the facilitator party.
type DelegationRequest struct {
	FromAssignmentID id.ID    `json:"from_assignment_id"`
	ToAssignmentID   id.ID    `json:"to_assignment_id"`
	FacilitatorID    id.ID    `json:"facilitator_id"`
	PackageNames     []string `json:"package_names,omitempty"`
}

// GrantPackage validates and persists a package grant. All business checks
// run through the validation composer so the caller sees every violation at
// once; a failed validation is returned as a *ProblemError.
func (e *Engine) GrantPackage(ctx context.Context, req *GrantPackageRequest) (*assignment.Assignment, error) {
	if req == nil || req.FromID.IsNil() || req.ToID.IsNil() {
		return nil, ErrPartyRequired
	}

	from, err := e.getEntity(ctx, req.FromID)
	if err != nil {
		return nil, fmt.Errorf("accessgraph grant: %w", err)
	}
	to, err := e.getEntity(ctx, req.ToID)
	if err != nil {
		return nil, fmt.Errorf("accessgraph grant: %w", err)
	}
	var toType *entity.Type
	if to != nil {
		toType, err = e.getEntityType(ctx, to.TypeID)
		if err != nil {
			return nil, fmt.Errorf("accessgraph grant: %w", err)
		}
	}
	r, err := e.getRole(ctx, req.RoleID)
	if err != nil {
		return nil, fmt.Errorf("accessgraph grant: %w", err)
	}

	found, err := e.lookupPackages(ctx, req.PackageNames)
	if err != nil {
		return nil, fmt.Errorf("accessgraph grant: %w", err)
	}
	urns := make([]string, 0, len(found))
	for _, p := range found {
		urns = append(urns, p.URN)
	}

	rules := []validation.Rule{
		validation.EntityExists(from, "from"),
		validation.EntityExists(to, "to"),
		validation.RoleExists(r, "role"),
		validation.PackageURNLookup(found, req.PackageNames, "packages"),
		validation.PackageIsAssignableToRecipient(urns, toType, "to"),
	}
	if !req.GrantedBy.IsNil() {
		checks, err := e.authorizePackages(ctx, req.FromID, req.GrantedBy, req.PackageNames)
		if err != nil {
			return nil, fmt.Errorf("accessgraph grant: %w", err)
		}
		rules = append(rules, validation.AuthorizePackageAssignment(checks, "packages"))
	}
	if problem := validation.Validate(rules...); problem != nil {
		return nil, &ProblemError{Problem: problem}
	}

	a, err := e.store.GetAssignmentByEdge(ctx, req.FromID, req.ToID, req.RoleID)
	if errors.Is(err, store.ErrNotFound) {
		a = &assignment.Assignment{
			ID:        id.NewAssignmentID(),
			FromID:    req.FromID,
			ToID:      req.ToID,
			RoleID:    req.RoleID,
			GrantedBy: req.GrantedBy,
			CreatedAt: time.Now(),
		}
		if err := e.store.CreateAssignment(ctx, a); err != nil {
			return nil, fmt.Errorf("accessgraph grant: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("accessgraph grant: %w", err)
	}

	for _, p := range found {
		ap := &assignment.Package{
			ID:           id.NewAssignmentPackageID(),
			AssignmentID: a.ID,
			PackageID:    p.ID,
			CreatedAt:    time.Now(),
		}
		if err := e.store.AddAssignmentPackage(ctx, ap); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue // already granted
			}
			return nil, fmt.Errorf("accessgraph grant: %w", err)
		}
		if e.hooks != nil {
			e.hooks.EmitPackageGranted(ctx, a, ap)
		}
	}

	if e.cache != nil {
		e.cache.InvalidateParty(ctx, req.FromID)
	}
	return a, nil
}

// RevokePackage detaches a package from an assignment.
func (e *Engine) RevokePackage(ctx context.Context, assignmentID, packageID id.ID) error {
	a, err := e.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return fmt.Errorf("accessgraph revoke package: %w", err)
	}
	if err := e.store.RemoveAssignmentPackage(ctx, assignmentID, packageID); err != nil {
		return fmt.Errorf("accessgraph revoke package: %w", err)
	}
	if e.cache != nil {
		e.cache.InvalidateParty(ctx, a.FromID)
	}
	return nil
}

// RevokeAssignment deletes an assignment. The delete is refused while
// package attachments or delegations still reference the row; the composed
// problem enumerates every blocker.
func (e *Engine) RevokeAssignment(ctx context.Context, assignmentID id.ID) error {
	a, err := e.getAssignment(ctx, assignmentID)
	if err != nil {
		return fmt.Errorf("accessgraph revoke: %w", err)
	}

	var pkgIDs, delIDs []id.ID
	if a != nil {
		aps, err := e.store.ListAssignmentPackages(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("accessgraph revoke: %w", err)
		}
		for _, ap := range aps {
			pkgIDs = append(pkgIDs, ap.PackageID)
		}
		dels, err := e.store.ListDelegationsForAssignment(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("accessgraph revoke: %w", err)
		}
		for _, d := range dels {
			delIDs = append(delIDs, d.ID)
		}
	}

	problem := validation.Validate(
		validation.AssignmentExists(a, "assignment"),
		validation.HasPackagesAssigned(pkgIDs, "assignment"),
		validation.HasDelegationsAssigned(delIDs, "assignment"),
	)
	if problem != nil {
		return &ProblemError{Problem: problem}
	}

	if err := e.store.DeleteAssignment(ctx, assignmentID); err != nil {
		return fmt.Errorf("accessgraph revoke: %w", err)
	}
	if e.cache != nil {
		e.cache.InvalidateParty(ctx, a.FromID)
	}
	if e.hooks != nil {
		e.hooks.EmitAssignmentRevoked(ctx, assignmentID)
	}
	return nil
}

// CreateDelegation validates and persists a delegation between two
// assignments. The facilitator must be the pivot party of both edges.
func (e *Engine) CreateDelegation(ctx context.Context, req *DelegationRequest) (*delegation.Delegation, error) {
	if req == nil || req.FacilitatorID.IsNil() {
		return nil, ErrPartyRequired
	}

	fa, err := e.getAssignment(ctx, req.FromAssignmentID)
	if err != nil {
		return nil, fmt.Errorf("accessgraph delegate: %w", err)
	}
	ta, err := e.getAssignment(ctx, req.ToAssignmentID)
	if err != nil {
		return nil, fmt.Errorf("accessgraph delegate: %w", err)
	}
	fac, err := e.getEntity(ctx, req.FacilitatorID)
	if err != nil {
		return nil, fmt.Errorf("accessgraph delegate: %w", err)
	}
	found, err := e.lookupPackages(ctx, req.PackageNames)
	if err != nil {
		return nil, fmt.Errorf("accessgraph delegate: %w", err)
	}

	problem := validation.Validate(
		validation.AssignmentExists(fa, "from"),
		validation.AssignmentExists(ta, "to"),
		validation.EntityExists(fac, "facilitator"),
		validation.DelegationPivot(fa, ta, req.FacilitatorID, "facilitator"),
		validation.PackageURNLookup(found, req.PackageNames, "packages"),
	)
	if problem != nil {
		return nil, &ProblemError{Problem: problem}
	}

	d := &delegation.Delegation{
		ID:            id.NewDelegationID(),
		FromID:        fa.ID,
		ToID:          ta.ID,
		FacilitatorID: req.FacilitatorID,
		CreatedAt:     time.Now(),
	}
	if err := e.store.CreateDelegation(ctx, d); err != nil {
		return nil, fmt.Errorf("accessgraph delegate: %w", err)
	}

	for _, p := range found {
		dp := &delegation.Package{
			ID:           id.NewDelegationPackageID(),
			DelegationID: d.ID,
			PackageID:    p.ID,
			CreatedAt:    time.Now(),
		}
		if err := e.store.AddDelegationPackage(ctx, dp); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return nil, fmt.Errorf("accessgraph delegate: %w", err)
		}
	}

	if e.cache != nil {
		e.cache.InvalidateParty(ctx, fa.FromID)
	}
	if e.hooks != nil {
		e.hooks.EmitDelegationCreated(ctx, d)
	}
	return d, nil
}

// RevokeDelegation deletes a delegation. The delete is refused while package
// attachments still reference it.
func (e *Engine) RevokeDelegation(ctx context.Context, delegationID id.ID) error {
	d, err := e.getDelegation(ctx, delegationID)
	if err != nil {
		return fmt.Errorf("accessgraph revoke delegation: %w", err)
	}

	var pkgIDs []id.ID
	if d != nil {
		dps, err := e.store.ListDelegationPackages(ctx, d.ID)
		if err != nil {
			return fmt.Errorf("accessgraph revoke delegation: %w", err)
		}
		for _, dp := range dps {
			pkgIDs = append(pkgIDs, dp.PackageID)
		}
	}

	problem := validation.Validate(
		validation.DelegationExists(d, "delegation"),
		validation.HasPackagesAssigned(pkgIDs, "delegation"),
	)
	if problem != nil {
		return &ProblemError{Problem: problem}
	}

	if err := e.store.DeleteDelegation(ctx, delegationID); err != nil {
		return fmt.Errorf("accessgraph revoke delegation: %w", err)
	}

	if e.cache != nil {
		if fa, err := e.store.GetAssignment(ctx, d.FromID); err == nil {
			e.cache.InvalidateParty(ctx, fa.FromID)
		}
	}
	if e.hooks != nil {
		e.hooks.EmitDelegationRevoked(ctx, delegationID)
	}
	return nil
}

// authorizePackages runs the gate for the acting user and pairs each
// requested package with its verdict for the authorization rule.
func (e *Engine) authorizePackages(ctx context.Context, partyID, actorID id.ID, names []string) ([]validation.PackageCheck, error) {
	results, err := e.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      partyID,
		ActorID:      actorID,
		PackageNames: names,
	})
	if err != nil {
		return nil, err
	}
	checks := make([]validation.PackageCheck, 0, len(results))
	for _, r := range results {
		checks = append(checks, validation.PackageCheck{Package: r.Package, Result: r.Allowed})
	}
	return checks, nil
}

func (e *Engine) lookupPackages(ctx context.Context, names []string) ([]*accesspackage.Package, error) {
	var found []*accesspackage.Package
	for _, name := range names {
		p, err := e.lookupPackage(ctx, name)
		if err != nil {
			return nil, err
		}
		if p != nil {
			found = append(found, p)
		}
	}
	return found, nil
}

// Lookup helpers that turn the store's not-found sentinel into a nil result
// so the validation rules can report absence.

func (e *Engine) getEntity(ctx context.Context, entityID id.ID) (*entity.Entity, error) {
	v, err := e.store.GetEntity(ctx, entityID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (e *Engine) getEntityType(ctx context.Context, typeID id.ID) (*entity.Type, error) {
	v, err := e.store.GetEntityType(ctx, typeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (e *Engine) getRole(ctx context.Context, roleID id.ID) (*role.Role, error) {
	v, err := e.store.GetRole(ctx, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (e *Engine) getAssignment(ctx context.Context, assignmentID id.ID) (*assignment.Assignment, error) {
	v, err := e.store.GetAssignment(ctx, assignmentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

func (e *Engine) getDelegation(ctx context.Context, delegationID id.ID) (*delegation.Delegation, error) {
	v, err := e.store.GetDelegation(ctx, delegationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return v, err
}
