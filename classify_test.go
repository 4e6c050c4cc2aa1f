package accessgraph

import (
	"context"
	"testing"

	"github.com/digdir/accessgraph/policy"
)

func TestClassifyAccess(t *testing.T) {
	f := newFixture(t)
	f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)
	eng := f.engine(t)

	in := []policy.ActionAccess{{
		ActionKey: "urn:altinn:resource:regnskap,urn:oasis:names:tc:xacml:1.0:action:action-id:read",
		AccessorUrns: []string{
			f.accRole.URN,
			f.accounting.URN,
			"urn:altinn:external-role:ccr:styreleder",
			"urn:altinn:accesspackage:lonn",
			"urn:altinn:resource:some-resource",
		},
	}}

	out, err := eng.ClassifyAccess(context.Background(), f.party.ID, f.actor.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d accesses, want 1", len(out))
	}
	c := out[0]
	if c.ActionKey != in[0].ActionKey {
		t.Fatalf("action key changed: %s", c.ActionKey)
	}

	if len(c.RoleAllowAccess) != 1 || c.RoleAllowAccess[0] != f.accRole.URN {
		t.Fatalf("role allow = %v, want [%s]", c.RoleAllowAccess, f.accRole.URN)
	}
	if len(c.RoleDenyAccess) != 1 || c.RoleDenyAccess[0] != "urn:altinn:external-role:ccr:styreleder" {
		t.Fatalf("role deny = %v", c.RoleDenyAccess)
	}
	if len(c.PackageAllowAccess) != 1 || c.PackageAllowAccess[0] != f.accounting.URN {
		t.Fatalf("package allow = %v, want [%s]", c.PackageAllowAccess, f.accounting.URN)
	}
	if len(c.PackageDenyAccess) != 1 || c.PackageDenyAccess[0] != "urn:altinn:accesspackage:lonn" {
		t.Fatalf("package deny = %v", c.PackageDenyAccess)
	}
	if len(c.ResourceDenyAccess) != 1 || c.ResourceDenyAccess[0] != "urn:altinn:resource:some-resource" {
		t.Fatalf("resource deny = %v", c.ResourceDenyAccess)
	}
	if len(c.ResourceAllowAccess) != 0 {
		t.Fatalf("resource allow = %v, want empty", c.ResourceAllowAccess)
	}
}

func TestClassifyAccess_NoConnections(t *testing.T) {
	f := newFixture(t)
	eng := f.engine(t)

	in := []policy.ActionAccess{{
		ActionKey:    "urn:altinn:resource:regnskap,urn:oasis:names:tc:xacml:1.0:action:action-id:write",
		AccessorUrns: []string{f.accRole.URN, f.accounting.URN},
	}}
	out, err := eng.ClassifyAccess(context.Background(), f.party.ID, f.actor.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	c := out[0]
	if len(c.RoleAllowAccess) != 0 || len(c.PackageAllowAccess) != 0 {
		t.Fatalf("allow buckets not empty: %v %v", c.RoleAllowAccess, c.PackageAllowAccess)
	}
	if len(c.RoleDenyAccess) != 1 || len(c.PackageDenyAccess) != 1 {
		t.Fatalf("deny buckets = %v %v", c.RoleDenyAccess, c.PackageDenyAccess)
	}
}

func TestClassifyAccess_DoesNotMutateInput(t *testing.T) {
	f := newFixture(t)
	f.assign(t, f.party.ID, f.actor.ID, f.accRole.ID)
	eng := f.engine(t)

	in := []policy.ActionAccess{{ActionKey: "k", AccessorUrns: []string{f.accRole.URN}}}
	if _, err := eng.ClassifyAccess(context.Background(), f.party.ID, f.actor.ID, in); err != nil {
		t.Fatal(err)
	}
	if in[0].RoleAllowAccess != nil || in[0].RoleDenyAccess != nil {
		t.Fatalf("input mutated: %+v", in[0])
	}
}
