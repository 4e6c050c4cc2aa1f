package validation

import (
	"strings"
	"testing"

	"github.com/digdir/accessgraph/accesspackage"
	"github.com/digdir/accessgraph/entity"
	"github.com/digdir/accessgraph/id"
	"github.com/digdir/accessgraph/resource"
	"github.com/digdir/accessgraph/role"
)

func firstError(t *testing.T, r Rule) Error {
	t.Helper()
	f := r()
	if f == nil {
		t.Fatal("expected rule to fail")
	}
	b := NewErrorBuilder()
	f(b)
	p := b.Build()
	if p == nil || len(p.Errors) == 0 {
		t.Fatal("expected at least one error")
	}
	return p.Errors[0]
}

func TestEntityExists(t *testing.T) {
	if f := EntityExists(&entity.Entity{ID: id.NewEntityID()}, "from")(); f != nil {
		t.Fatal("expected pass for present entity")
	}
	e := firstError(t, EntityExists(nil, "from"))
	if e.Code != CodeEntityNotExists {
		t.Errorf("expected EntityNotExists, got %s", e.Code)
	}
	if e.Paths[0] != "from" {
		t.Errorf("expected path from, got %s", e.Paths[0])
	}
}

func TestRoleExists(t *testing.T) {
	if f := RoleExists(&role.Role{ID: id.NewRoleID()}, "role")(); f != nil {
		t.Fatal("expected pass for present role")
	}
	e := firstError(t, RoleExists(nil, "role"))
	if e.Code != CodeRoleNotExists {
		t.Errorf("expected RoleNotExists, got %s", e.Code)
	}
}

func TestPackageExists_DetailNamesLookup(t *testing.T) {
	e := firstError(t, PackageExists(nil, "regnskapsfoerer", "package"))
	if e.Code != CodePackageNotExists {
		t.Errorf("expected PackageNotExists, got %s", e.Code)
	}
	if !strings.Contains(e.Detail, "regnskapsfoerer") {
		t.Errorf("detail should name the looked-up package: %q", e.Detail)
	}
}

func TestIsOfType(t *testing.T) {
	org := &entity.Type{ID: id.NewEntityTypeID(), Name: entity.TypeOrganization}

	if f := IsOfType(org, []string{entity.TypeOrganization, entity.TypePerson}, "to")(); f != nil {
		t.Fatal("expected pass for allowed type")
	}

	e := firstError(t, IsOfType(org, []string{entity.TypePerson}, "to"))
	if e.Code != CodeDisallowedEntityType {
		t.Errorf("expected DisallowedEntityType, got %s", e.Code)
	}
	if !strings.Contains(e.Detail, entity.TypePerson) || !strings.Contains(e.Detail, entity.TypeOrganization) {
		t.Errorf("detail should list allowed set and actual type: %q", e.Detail)
	}

	e = firstError(t, IsOfType(nil, []string{entity.TypePerson}, "to"))
	if !strings.Contains(e.Detail, "<none>") {
		t.Errorf("detail should mark a missing type: %q", e.Detail)
	}
}

func TestPackageIsAssignableToRecipient(t *testing.T) {
	org := &entity.Type{ID: id.NewEntityTypeID(), Name: entity.TypeOrganization}
	person := &entity.Type{ID: id.NewEntityTypeID(), Name: entity.TypePerson}
	urns := []string{accesspackage.MainAdministratorURN}

	// Organization recipient: reserved package blocked.
	e := firstError(t, PackageIsAssignableToRecipient(urns, org, "package"))
	if e.Code != CodePackageIsNotAssignableToRecipient {
		t.Errorf("expected PackageIsNotAssignableToRecipient, got %s", e.Code)
	}
	if !strings.Contains(e.Detail, accesspackage.MainAdministratorURN) {
		t.Errorf("detail should name the blocked package: %q", e.Detail)
	}

	// Person recipient: same package passes.
	if f := PackageIsAssignableToRecipient(urns, person, "package")(); f != nil {
		t.Fatal("expected pass for person recipient")
	}

	// Unreserved packages pass for organizations too.
	if f := PackageIsAssignableToRecipient([]string{"urn:altinn:accesspackage:regnskap"}, org, "package")(); f != nil {
		t.Fatal("expected pass for unreserved package")
	}
}

func TestAuthorizePackageAssignment(t *testing.T) {
	allowed := PackageCheck{Package: &accesspackage.Package{Name: "a", URN: "urn:altinn:accesspackage:a"}, Result: true}
	denied := PackageCheck{Package: &accesspackage.Package{Name: "b", URN: "urn:altinn:accesspackage:b"}, Result: false}

	if f := AuthorizePackageAssignment([]PackageCheck{allowed}, "package")(); f != nil {
		t.Fatal("expected pass when every check passed")
	}

	e := firstError(t, AuthorizePackageAssignment([]PackageCheck{allowed, denied}, "package"))
	if e.Code != CodeUserNotAuthorized {
		t.Errorf("expected UserNotAuthorized, got %s", e.Code)
	}
	if !strings.Contains(e.Detail, "urn:altinn:accesspackage:b") {
		t.Errorf("detail should list the denied package: %q", e.Detail)
	}
	if strings.Contains(e.Detail, "urn:altinn:accesspackage:a") {
		t.Errorf("detail should not list allowed packages: %q", e.Detail)
	}
}

func TestAuthorizeResourceAssignment(t *testing.T) {
	denied := ResourceCheck{Resource: &resource.Resource{RefID: "app_skd_skattemelding"}, Result: false}
	e := firstError(t, AuthorizeResourceAssignment([]ResourceCheck{denied}, "resource"))
	if e.Code != CodeUserNotAuthorized {
		t.Errorf("expected UserNotAuthorized, got %s", e.Code)
	}
	if !strings.Contains(e.Detail, "app_skd_skattemelding") {
		t.Errorf("detail should list the denied resource: %q", e.Detail)
	}
}

func TestHasPackagesAssigned(t *testing.T) {
	// Empty: pass.
	if f := HasPackagesAssigned(nil, "assignment")(); f != nil {
		t.Fatal("expected pass for no active packages")
	}

	pkg1 := id.NewPackageID()
	pkg2 := id.NewPackageID()
	e := firstError(t, HasPackagesAssigned([]id.ID{pkg1, pkg2}, "assignment"))
	if e.Code != CodeAssignmentIsActiveInOneOrMoreDelegations {
		t.Errorf("expected AssignmentIsActiveInOneOrMoreDelegations, got %s", e.Code)
	}
	if !strings.Contains(e.Detail, pkg1.String()+", "+pkg2.String()) {
		t.Errorf("detail should comma-join the blocking ids: %q", e.Detail)
	}
}

func TestHasDelegationsAssigned(t *testing.T) {
	if f := HasDelegationsAssigned(nil, "assignment")(); f != nil {
		t.Fatal("expected pass for no delegations")
	}
	dlg := id.NewDelegationID()
	e := firstError(t, HasDelegationsAssigned([]id.ID{dlg}, "assignment"))
	if e.Code != CodeAssignmentHasActiveConnections {
		t.Errorf("expected AssignmentHasActiveConnections, got %s", e.Code)
	}
	if !strings.Contains(e.Detail, dlg.String()) {
		t.Errorf("detail should list the blocking delegation: %q", e.Detail)
	}
}

func TestPackageURNLookup(t *testing.T) {
	pkgA := &accesspackage.Package{ID: id.NewPackageID(), Name: "pkg-a", URN: "urn:altinn:accesspackage:pkg-a"}
	pkgB := &accesspackage.Package{ID: id.NewPackageID(), Name: "pkg-b", URN: "urn:altinn:accesspackage:pkg-b"}

	// Exact resolution: pass.
	if f := PackageURNLookup([]*accesspackage.Package{pkgA}, []string{"pkg-a"}, "package")(); f != nil {
		t.Fatal("expected pass for exact match")
	}

	// Nothing requested: pass.
	if f := PackageURNLookup(nil, nil, "package")(); f != nil {
		t.Fatal("expected pass for empty request")
	}

	// Zero matches.
	e := firstError(t, PackageURNLookup(nil, []string{"pkg-a"}, "package"))
	if e.Code != CodeInvalidQueryParameter {
		t.Errorf("expected InvalidQueryParameter, got %s", e.Code)
	}
	if !strings.Contains(e.Detail, "pkg-a") {
		t.Errorf("detail should mention the requested name: %q", e.Detail)
	}

	// Count mismatch: two found, one requested. The unmatched name is listed.
	e = firstError(t, PackageURNLookup([]*accesspackage.Package{pkgA, pkgB}, []string{"pkg-a"}, "package"))
	if e.Code != CodeInvalidQueryParameter {
		t.Errorf("expected InvalidQueryParameter, got %s", e.Code)
	}
	if !strings.Contains(e.Detail, "pkg-b") {
		t.Errorf("detail should list the unmatched name: %q", e.Detail)
	}
}

func TestPackageURNLookup_Idempotent(t *testing.T) {
	r := PackageURNLookup(nil, []string{"x"}, "package")
	b1, b2 := NewErrorBuilder(), NewErrorBuilder()
	r()(b1)
	r()(b2)
	if b1.Build().Errors[0].Detail != b2.Build().Errors[0].Detail {
		t.Error("rule factory is not idempotent")
	}
}
