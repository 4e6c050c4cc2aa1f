package accessgraph

import (
	"context"
	"errors"
	"testing"

	"github.com/digdir/accessgraph/accesspackage"
	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/decisionlog"
	"github.com/digdir/accessgraph/entity"
	"github.com/digdir/accessgraph/id"
	"github.com/digdir/accessgraph/resource"
	"github.com/digdir/accessgraph/role"
	"github.com/digdir/accessgraph/store/memory"
	"github.com/digdir/accessgraph/validation"
)

// fixture seeds the reference data every gate test builds on: the entity
// type taxonomy, an organization party, a person actor, one key role and one
// ordinary role, and an assignable package linked to the ordinary role.
type fixture struct {
	store *memory.Store

	orgType    *entity.Type
	personType *entity.Type

	party *entity.Entity // organization whose rights are delegated
	actor *entity.Entity // person performing actions

	keyRole *role.Role // daglig leder, inherits through intermediaries
	accRole *role.Role // regnskapsforer, grants the accounting package

	accounting *accesspackage.Package
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	f := &fixture{store: s}

	f.orgType = &entity.Type{ID: id.NewEntityTypeID(), Name: entity.TypeOrganization}
	f.personType = &entity.Type{ID: id.NewEntityTypeID(), Name: entity.TypePerson}
	mustOK(t, s.CreateEntityType(ctx, f.orgType))
	mustOK(t, s.CreateEntityType(ctx, f.personType))

	f.party = &entity.Entity{ID: id.NewEntityID(), Name: "Eksempel AS", TypeID: f.orgType.ID, RefID: "910000001"}
	f.actor = &entity.Entity{ID: id.NewEntityID(), Name: "Kari Nordmann", TypeID: f.personType.ID, RefID: "01019012345"}
	mustOK(t, s.CreateEntity(ctx, f.party))
	mustOK(t, s.CreateEntity(ctx, f.actor))

	f.keyRole = &role.Role{
		ID:           id.NewRoleID(),
		EntityTypeID: f.orgType.ID,
		Code:         "daglig-leder",
		Name:         "Daglig leder",
		URN:          "urn:altinn:external-role:ccr:daglig-leder",
		IsKeyRole:    true,
	}
	f.accRole = &role.Role{
		ID:           id.NewRoleID(),
		EntityTypeID: f.orgType.ID,
		Code:         "regnskapsforer",
		Name:         "Regnskapsfører",
		URN:          "urn:altinn:external-role:ccr:regnskapsforer",
	}
	mustOK(t, s.CreateRole(ctx, f.keyRole))
	mustOK(t, s.CreateRole(ctx, f.accRole))

	f.accounting = &accesspackage.Package{
		ID:           id.NewPackageID(),
		AreaID:       id.NewAreaID(),
		EntityTypeID: f.orgType.ID,
		Name:         "Regnskap",
		URN:          "urn:altinn:accesspackage:regnskap",
		IsAssignable: true,
		IsDelegable:  true,
	}
	mustOK(t, s.CreatePackage(ctx, f.accounting))
	mustOK(t, s.AttachPackage(ctx, &role.Package{
		RoleID:      f.accRole.ID,
		PackageID:   f.accounting.ID,
		HasAccess:   true,
		CanDelegate: true,
	}))

	return f
}

func (f *fixture) engine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	eng, err := NewEngine(append([]Option{WithStore(f.store)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

// assign creates a direct (from, to, role) edge.
func (f *fixture) assign(t *testing.T, from, to, roleID id.ID) *assignment.Assignment {
	t.Helper()
	a := &assignment.Assignment{ID: id.NewAssignmentID(), FromID: from, ToID: to, RoleID: roleID}
	mustOK(t, f.store.CreateAssignment(context.Background(), a))
	return a
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine()
	if !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
}

func TestCheckPackageAssignment_DirectRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)

	results, err := eng.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{f.accounting.URN},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if !r.Allowed {
		t.Fatalf("expected allowed, reasons: %+v", r.Reasons)
	}
	if len(r.Reasons) != 1 {
		t.Fatalf("expected 1 reason, got %d", len(r.Reasons))
	}
	if r.Reasons[0].RoleURN != f.accRole.URN {
		t.Fatalf("expected role urn %s, got %s", f.accRole.URN, r.Reasons[0].RoleURN)
	}
	if !r.Reasons[0].ViaID.IsNil() {
		t.Fatal("direct access should carry no via chain")
	}
}

func TestCheckPackageAssignment_DeniedWithoutConnection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	results, err := eng.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{f.accounting.URN},
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Allowed {
		t.Fatal("expected denied without any connection")
	}
}

func TestCheckPackageAssignment_NotAssignable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	locked := &accesspackage.Package{
		ID:   id.NewPackageID(),
		Name: "Klientadministrasjon",
		URN:  "urn:altinn:accesspackage:klientadministrasjon",
	}
	mustOK(t, f.store.CreatePackage(ctx, locked))
	f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)

	results, err := eng.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{locked.URN},
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Allowed {
		t.Fatal("non-assignable package must be denied regardless of roles")
	}
}

func TestCheckPackageAssignment_KeyRoleHop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	// The actor is daglig leder of an intermediary, and the party granted
	// the intermediary the accounting role. Access flows through the hop.
	intermediary := &entity.Entity{ID: id.NewEntityID(), Name: "Regnskapsbyrå AS", TypeID: f.orgType.ID, RefID: "910000002"}
	mustOK(t, f.store.CreateEntity(ctx, intermediary))

	f.assign(t, intermediary.ID, f.actor.ID, f.keyRole.ID)
	f.assign(t, f.party.ID, intermediary.ID, f.accRole.ID)

	results, err := eng.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{f.accounting.URN},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if !r.Allowed {
		t.Fatalf("expected allowed through key role, reasons: %+v", r.Reasons)
	}
	reason := r.Reasons[0]
	if reason.ViaID != intermediary.ID {
		t.Fatalf("expected via %s, got %s", intermediary.ID, reason.ViaID)
	}
	if reason.ViaRoleURN != f.keyRole.URN {
		t.Fatalf("expected via role urn %s, got %s", f.keyRole.URN, reason.ViaRoleURN)
	}
}

func TestCheckPackageAssignment_KeyRoleDisabled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	disabled := false
	eng := f.engine(t, WithConfig(Config{EnableKeyRoles: &disabled}))

	intermediary := &entity.Entity{ID: id.NewEntityID(), Name: "Regnskapsbyrå AS", TypeID: f.orgType.ID, RefID: "910000002"}
	mustOK(t, f.store.CreateEntity(ctx, intermediary))
	f.assign(t, intermediary.ID, f.actor.ID, f.keyRole.ID)
	f.assign(t, f.party.ID, intermediary.ID, f.accRole.ID)

	results, err := eng.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{f.accounting.URN},
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Allowed {
		t.Fatal("key role hop should be inert when disabled")
	}
}

func TestCheckPackageAssignment_DelegationChain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	// party → facilitator (accounting role), facilitator → actor (employee
	// role), connected by a delegation through the facilitator.
	facilitator := &entity.Entity{ID: id.NewEntityID(), Name: "Regnskapsbyrå AS", TypeID: f.orgType.ID, RefID: "910000003"}
	mustOK(t, f.store.CreateEntity(ctx, facilitator))

	employeeRole := &role.Role{
		ID:           id.NewRoleID(),
		EntityTypeID: f.orgType.ID,
		Code:         "agent",
		Name:         "Agent",
		URN:          "urn:altinn:rolecode:agent",
	}
	mustOK(t, f.store.CreateRole(ctx, employeeRole))

	fromAsgn := f.assign(t, f.party.ID, facilitator.ID, f.accRole.ID)
	toAsgn := f.assign(t, facilitator.ID, f.actor.ID, employeeRole.ID)

	d, err := eng.CreateDelegation(ctx, &DelegationRequest{
		FromAssignmentID: fromAsgn.ID,
		ToAssignmentID:   toAsgn.ID,
		FacilitatorID:    facilitator.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := eng.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{f.accounting.URN},
	})
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if !r.Allowed {
		t.Fatalf("expected allowed through delegation, reasons: %+v", r.Reasons)
	}
	if r.Reasons[0].ViaID != facilitator.ID {
		t.Fatalf("expected facilitator via, got %s", r.Reasons[0].ViaID)
	}

	// Revoking the delegation severs the chain.
	if err := eng.RevokeDelegation(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	results, err = eng.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{f.accounting.URN},
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Allowed {
		t.Fatal("expected denied after delegation revoked")
	}
}

func TestCheckPackageAssignment_UnknownPackage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	results, err := eng.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{"urn:altinn:accesspackage:finnes-ikke"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Allowed || results[0].Package != nil {
		t.Fatal("unknown package must be denied with nil package")
	}
}

func TestCheckPackageAssignment_RequiresParties(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)

	_, err := eng.CheckPackageAssignment(context.Background(), &PackageCheckRequest{ActorID: f.actor.ID})
	if !errors.Is(err, ErrPartyRequired) {
		t.Fatalf("expected ErrPartyRequired, got %v", err)
	}
}

func TestGrantPackage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	recipient := &entity.Entity{ID: id.NewEntityID(), Name: "Ola Nordmann", TypeID: f.personType.ID, RefID: "02029054321"}
	mustOK(t, f.store.CreateEntity(ctx, recipient))

	a, err := eng.GrantPackage(ctx, &GrantPackageRequest{
		FromID:       f.party.ID,
		ToID:         recipient.ID,
		RoleID:       f.accRole.ID,
		PackageNames: []string{f.accounting.URN},
	})
	if err != nil {
		t.Fatal(err)
	}

	aps, _ := f.store.ListAssignmentPackages(ctx, a.ID)
	if len(aps) != 1 || aps[0].PackageID != f.accounting.ID {
		t.Fatal("package not attached to the assignment")
	}

	// Granting again reuses the edge and tolerates the duplicate attachment.
	again, err := eng.GrantPackage(ctx, &GrantPackageRequest{
		FromID:       f.party.ID,
		ToID:         recipient.ID,
		RoleID:       f.accRole.ID,
		PackageNames: []string{f.accounting.URN},
	})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != a.ID {
		t.Fatal("expected the existing assignment edge to be reused")
	}
}

func TestGrantPackage_ValidationFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	// Unknown recipient, unknown role, unknown package: the composed
	// problem reports all violations at once.
	_, err := eng.GrantPackage(ctx, &GrantPackageRequest{
		FromID:       f.party.ID,
		ToID:         id.NewEntityID(),
		RoleID:       id.NewRoleID(),
		PackageNames: []string{"urn:altinn:accesspackage:finnes-ikke"},
	})
	var pe *ProblemError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProblemError, got %v", err)
	}
	if len(pe.Problem.Errors) < 3 {
		t.Fatalf("expected at least 3 composed errors, got %d: %+v", len(pe.Problem.Errors), pe.Problem.Errors)
	}

	codes := make(map[validation.Code]bool)
	for _, e := range pe.Problem.Errors {
		codes[e.Code] = true
	}
	for _, want := range []validation.Code{
		validation.CodeEntityNotExists,
		validation.CodeRoleNotExists,
		validation.CodeInvalidQueryParameter,
	} {
		if !codes[want] {
			t.Fatalf("missing code %s in %+v", want, pe.Problem.Errors)
		}
	}
}

func TestGrantPackage_MainAdministratorBlockedForOrganizations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	admin := &accesspackage.Package{
		ID:           id.NewPackageID(),
		EntityTypeID: f.orgType.ID,
		Name:         "Hovedadministrator",
		URN:          accesspackage.MainAdministratorURN,
		IsAssignable: true,
	}
	mustOK(t, f.store.CreatePackage(ctx, admin))

	recipientOrg := &entity.Entity{ID: id.NewEntityID(), Name: "Mottaker AS", TypeID: f.orgType.ID, RefID: "910000004"}
	mustOK(t, f.store.CreateEntity(ctx, recipientOrg))

	_, err := eng.GrantPackage(ctx, &GrantPackageRequest{
		FromID:       f.party.ID,
		ToID:         recipientOrg.ID,
		RoleID:       f.accRole.ID,
		PackageNames: []string{admin.URN},
	})
	var pe *ProblemError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProblemError, got %v", err)
	}
	if pe.Problem.Errors[0].Code != validation.CodePackageIsNotAssignableToRecipient {
		t.Fatalf("expected PackageIsNotAssignableToRecipient, got %+v", pe.Problem.Errors)
	}

	// The same package is fine for a person recipient.
	person := &entity.Entity{ID: id.NewEntityID(), Name: "Ola Nordmann", TypeID: f.personType.ID, RefID: "02029054321"}
	mustOK(t, f.store.CreateEntity(ctx, person))
	if _, err := eng.GrantPackage(ctx, &GrantPackageRequest{
		FromID:       f.party.ID,
		ToID:         person.ID,
		RoleID:       f.accRole.ID,
		PackageNames: []string{admin.URN},
	}); err != nil {
		t.Fatal(err)
	}
}

func TestGrantPackage_AuthorizedActor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	recipient := &entity.Entity{ID: id.NewEntityID(), Name: "Ola Nordmann", TypeID: f.personType.ID, RefID: "02029054321"}
	mustOK(t, f.store.CreateEntity(ctx, recipient))

	// Actor without any connection for the party is refused.
	_, err := eng.GrantPackage(ctx, &GrantPackageRequest{
		FromID:       f.party.ID,
		ToID:         recipient.ID,
		RoleID:       f.accRole.ID,
		PackageNames: []string{f.accounting.URN},
		GrantedBy:    f.actor.ID,
	})
	var pe *ProblemError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProblemError, got %v", err)
	}
	if pe.Problem.Errors[0].Code != validation.CodeUserNotAuthorized {
		t.Fatalf("expected UserNotAuthorized, got %+v", pe.Problem.Errors)
	}

	// With a delegable role for the party the same grant goes through.
	f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)
	if _, err := eng.GrantPackage(ctx, &GrantPackageRequest{
		FromID:       f.party.ID,
		ToID:         recipient.ID,
		RoleID:       f.accRole.ID,
		PackageNames: []string{f.accounting.URN},
		GrantedBy:    f.actor.ID,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestRevokeAssignment_CascadeGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	recipient := &entity.Entity{ID: id.NewEntityID(), Name: "Ola Nordmann", TypeID: f.personType.ID, RefID: "02029054321"}
	mustOK(t, f.store.CreateEntity(ctx, recipient))

	a, err := eng.GrantPackage(ctx, &GrantPackageRequest{
		FromID:       f.party.ID,
		ToID:         recipient.ID,
		RoleID:       f.accRole.ID,
		PackageNames: []string{f.accounting.URN},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Blocked while the package attachment exists.
	err = eng.RevokeAssignment(ctx, a.ID)
	var pe *ProblemError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProblemError, got %v", err)
	}
	if pe.Problem.Errors[0].Code != validation.CodeAssignmentIsActiveInOneOrMoreDelegations {
		t.Fatalf("expected package guard code, got %+v", pe.Problem.Errors)
	}

	// After detaching, the revoke goes through.
	mustOK(t, eng.RevokePackage(ctx, a.ID, f.accounting.ID))
	mustOK(t, eng.RevokeAssignment(ctx, a.ID))

	if _, err := f.store.GetAssignment(ctx, a.ID); err == nil {
		t.Fatal("assignment should be gone")
	}

	// Revoking a missing assignment reports absence, not a panic.
	err = eng.RevokeAssignment(ctx, a.ID)
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProblemError, got %v", err)
	}
	if pe.Problem.Errors[0].Code != validation.CodeEntityNotExists {
		t.Fatalf("expected EntityNotExists, got %+v", pe.Problem.Errors)
	}
}

func TestRevokeAssignment_BlockedByDelegation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	facilitator := &entity.Entity{ID: id.NewEntityID(), Name: "Regnskapsbyrå AS", TypeID: f.orgType.ID, RefID: "910000003"}
	mustOK(t, f.store.CreateEntity(ctx, facilitator))

	fromAsgn := f.assign(t, f.party.ID, facilitator.ID, f.accRole.ID)
	toAsgn := f.assign(t, facilitator.ID, f.actor.ID, f.accRole.ID)

	if _, err := eng.CreateDelegation(ctx, &DelegationRequest{
		FromAssignmentID: fromAsgn.ID,
		ToAssignmentID:   toAsgn.ID,
		FacilitatorID:    facilitator.ID,
	}); err != nil {
		t.Fatal(err)
	}

	err := eng.RevokeAssignment(ctx, fromAsgn.ID)
	var pe *ProblemError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProblemError, got %v", err)
	}
	if pe.Problem.Errors[0].Code != validation.CodeAssignmentHasActiveConnections {
		t.Fatalf("expected delegation guard code, got %+v", pe.Problem.Errors)
	}
}

func TestCreateDelegation_PivotEnforced(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	facilitator := &entity.Entity{ID: id.NewEntityID(), Name: "Regnskapsbyrå AS", TypeID: f.orgType.ID, RefID: "910000003"}
	other := &entity.Entity{ID: id.NewEntityID(), Name: "Annet Byrå AS", TypeID: f.orgType.ID, RefID: "910000005"}
	mustOK(t, f.store.CreateEntity(ctx, facilitator))
	mustOK(t, f.store.CreateEntity(ctx, other))

	fromAsgn := f.assign(t, f.party.ID, facilitator.ID, f.accRole.ID)
	// The receiving assignment hangs off a different party, so the
	// facilitator is not the pivot.
	toAsgn := f.assign(t, other.ID, f.actor.ID, f.accRole.ID)

	_, err := eng.CreateDelegation(ctx, &DelegationRequest{
		FromAssignmentID: fromAsgn.ID,
		ToAssignmentID:   toAsgn.ID,
		FacilitatorID:    facilitator.ID,
	})
	var pe *ProblemError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProblemError, got %v", err)
	}
	if pe.Problem.Errors[0].Code != validation.CodeInvalidDelegation {
		t.Fatalf("expected InvalidDelegation, got %+v", pe.Problem.Errors)
	}
}

func TestCheckResourceDelegation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	rt := &resource.Type{ID: id.NewResourceTypeID(), Name: "GenericAccessResource"}
	prov := &resource.Provider{ID: id.NewProviderID(), Name: "Skatteetaten", OrgRef: "974761076"}
	mustOK(t, f.store.CreateResourceType(ctx, rt))
	mustOK(t, f.store.CreateProvider(ctx, prov))

	res := &resource.Resource{
		ID:         id.NewResourceID(),
		RefID:      "app_skd_skattemelding",
		TypeID:     rt.ID,
		ProviderID: prov.ID,
		Name:       "Skattemelding",
		Delegable:  true,
	}
	mustOK(t, f.store.CreateResource(ctx, res))
	mustOK(t, f.store.LinkPackageResource(ctx, f.accounting.ID, res.ID))

	f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)

	results, err := eng.CheckResourceDelegation(ctx, &ResourceCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		ResourceRefs: []string{res.RefID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Allowed {
		t.Fatalf("expected allowed, reasons: %+v", results[0].Reasons)
	}

	// Unknown ref is a denial, not an error.
	results, err = eng.CheckResourceDelegation(ctx, &ResourceCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		ResourceRefs: []string{"finnes_ikke"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Allowed {
		t.Fatal("unknown resource must be denied")
	}
}

func TestCheckResourceDelegation_AccessListGating(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	gated := &resource.Resource{
		ID:             id.NewResourceID(),
		RefID:          "skd-sikret-ressurs",
		Name:           "Sikret ressurs",
		Delegable:      true,
		AccessListMode: resource.AccessListEnabled,
	}
	mustOK(t, f.store.CreateResource(ctx, gated))
	mustOK(t, f.store.LinkPackageResource(ctx, f.accounting.ID, gated.ID))
	f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)

	// Organization party not on the list: gated.
	results, err := eng.CheckResourceDelegation(ctx, &ResourceCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		ResourceRefs: []string{gated.RefID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Allowed {
		t.Fatal("organization party off the access list must be gated")
	}

	// On the list: allowed.
	results, err = eng.CheckResourceDelegation(ctx, &ResourceCheckRequest{
		PartyID:          f.party.ID,
		ActorID:          f.actor.ID,
		ResourceRefs:     []string{gated.RefID},
		AccessListedRefs: []string{gated.RefID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Allowed {
		t.Fatalf("listed party should pass the gate, reasons: %+v", results[0].Reasons)
	}

	// Person party: the gate never applies.
	personParty := &entity.Entity{ID: id.NewEntityID(), Name: "Kari Privat", TypeID: f.personType.ID, RefID: "03039012345"}
	mustOK(t, f.store.CreateEntity(ctx, personParty))
	f.assign(t, personParty.ID, f.actor.ID, f.accRole.ID)

	results, err = eng.CheckResourceDelegation(ctx, &ResourceCheckRequest{
		PartyID:      personParty.ID,
		ActorID:      f.actor.ID,
		ResourceRefs: []string{gated.RefID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !results[0].Allowed {
		t.Fatalf("person party is never access-list gated, reasons: %+v", results[0].Reasons)
	}
}

func TestCheckWritesDecisionLog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)

	if _, err := eng.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{f.accounting.URN},
	}); err != nil {
		t.Fatal(err)
	}

	logs, err := f.store.ListDecisionLogs(ctx, &decisionlog.QueryFilter{PartyID: &f.party.ID, Kind: "package"})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 decision log entry, got %d", len(logs))
	}
	if logs[0].Decision != string(DecisionAllow) {
		t.Fatalf("expected allow decision, got %s", logs[0].Decision)
	}

	// Disabled logging writes nothing.
	off := false
	quiet := f.engine(t, WithConfig(Config{EnableDecisionLog: &off}))
	if _, err := quiet.CheckPackageAssignment(ctx, &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{f.accounting.URN},
	}); err != nil {
		t.Fatal(err)
	}
	logs, _ = f.store.ListDecisionLogs(ctx, &decisionlog.QueryFilter{PartyID: &f.party.ID, Kind: "package"})
	if len(logs) != 1 {
		t.Fatalf("expected still 1 entry with logging disabled, got %d", len(logs))
	}
}

// fakeCache records interactions so the engine's cache wiring can be
// asserted without the real implementation.
type fakeCache struct {
	pkg          map[string][]*PackageCheckResult
	invalidated  []id.ID
	hits, misses int
}

func newFakeCache() *fakeCache {
	return &fakeCache{pkg: make(map[string][]*PackageCheckResult)}
}

func (c *fakeCache) key(req *PackageCheckRequest) string {
	return req.PartyID.String() + "|" + req.ActorID.String()
}

func (c *fakeCache) GetPackageCheck(_ context.Context, req *PackageCheckRequest) ([]*PackageCheckResult, bool) {
	r, ok := c.pkg[c.key(req)]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return r, ok
}

func (c *fakeCache) SetPackageCheck(_ context.Context, req *PackageCheckRequest, results []*PackageCheckResult) {
	c.pkg[c.key(req)] = results
}

func (c *fakeCache) GetResourceCheck(_ context.Context, _ *ResourceCheckRequest) ([]*ResourceCheckResult, bool) {
	return nil, false
}

func (c *fakeCache) SetResourceCheck(_ context.Context, _ *ResourceCheckRequest, _ []*ResourceCheckResult) {
}

func (c *fakeCache) InvalidateParty(_ context.Context, partyID id.ID) {
	c.invalidated = append(c.invalidated, partyID)
	c.pkg = make(map[string][]*PackageCheckResult)
}

func TestEngineCacheWiring(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	fc := newFakeCache()
	eng := f.engine(t, WithCache(fc))

	f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)

	req := &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{f.accounting.URN},
	}
	if _, err := eng.CheckPackageAssignment(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.CheckPackageAssignment(ctx, req); err != nil {
		t.Fatal(err)
	}
	if fc.hits != 1 || fc.misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d/%d", fc.hits, fc.misses)
	}

	// A grant for the party drops its cached verdicts.
	recipient := &entity.Entity{ID: id.NewEntityID(), Name: "Ola Nordmann", TypeID: f.personType.ID, RefID: "02029054321"}
	mustOK(t, f.store.CreateEntity(ctx, recipient))
	if _, err := eng.GrantPackage(ctx, &GrantPackageRequest{
		FromID:       f.party.ID,
		ToID:         recipient.ID,
		RoleID:       f.accRole.ID,
		PackageNames: []string{f.accounting.URN},
	}); err != nil {
		t.Fatal(err)
	}
	if len(fc.invalidated) == 0 || fc.invalidated[0] != f.party.ID {
		t.Fatal("grant should invalidate the party's cached verdicts")
	}
}

func TestConnections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	a := f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)

	conns, err := eng.Connections(ctx, f.party.ID, f.actor.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(conns) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(conns))
	}
	c := conns[0]
	if !c.Direct() {
		t.Fatal("expected a direct connection")
	}
	if c.AssignmentID != a.ID || c.RoleID != f.accRole.ID {
		t.Fatal("connection does not reference the assignment edge")
	}

	// Swapped direction resolves nothing.
	conns, err = eng.Connections(ctx, f.actor.ID, f.party.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(conns) != 0 {
		t.Fatalf("expected no reverse connections, got %d", len(conns))
	}
}

func TestEnforcePackageAssignment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	eng := f.engine(t)

	req := &PackageCheckRequest{
		PartyID:      f.party.ID,
		ActorID:      f.actor.ID,
		PackageNames: []string{f.accounting.URN},
	}

	if err := eng.EnforcePackageAssignment(ctx, req); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)
	if err := eng.EnforcePackageAssignment(ctx, req); err != nil {
		t.Fatal(err)
	}
}

// Hook recording for engine-side emission tests lives in hook/registry_test;
// here only the wiring through options is covered.
type countingHook struct{ granted int }

func (h *countingHook) Name() string { return "counting" }

func (h *countingHook) OnPackageGranted(_ context.Context, _ *assignment.Assignment, _ *assignment.Package) error {
	h.granted++
	return nil
}

func TestEngineHookWiring(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h := &countingHook{}
	eng := f.engine(t, WithHook(h))

	recipient := &entity.Entity{ID: id.NewEntityID(), Name: "Ola Nordmann", TypeID: f.personType.ID, RefID: "02029054321"}
	mustOK(t, f.store.CreateEntity(ctx, recipient))

	if _, err := eng.GrantPackage(ctx, &GrantPackageRequest{
		FromID:       f.party.ID,
		ToID:         recipient.ID,
		RoleID:       f.accRole.ID,
		PackageNames: []string{f.accounting.URN},
	}); err != nil {
		t.Fatal(err)
	}
	if h.granted != 1 {
		t.Fatalf("expected 1 granted event, got %d", h.granted)
	}
}
