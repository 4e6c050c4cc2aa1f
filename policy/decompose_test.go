package policy

import (
	"reflect"
	"testing"

	"github.com/digdir/accessgraph/entity"
	"github.com/digdir/accessgraph/resource"
)

const actionIDAttribute = "urn:oasis:names:tc:xacml:1.0:action:action-id"

func resourceMatch(attrID, value string) AttributeMatch {
	return AttributeMatch{ID: attrID, Value: value, Category: CategoryResource}
}

func actionMatch(value string) AttributeMatch {
	return AttributeMatch{ID: actionIDAttribute, Value: value, Category: CategoryAction}
}

func subjectMatch(attrID, value string) AttributeMatch {
	return AttributeMatch{ID: attrID, Value: value, Category: CategorySubject}
}

func ruleWith(clauses ...[]AttributeMatch) Rule {
	var anyOfs []AnyOf
	for _, c := range clauses {
		anyOfs = append(anyOfs, AnyOf{AllOf: []AllOf{{Matches: c}}})
	}
	return Rule{Target: Target{AnyOf: anyOfs}}
}

func TestCalculateActionKeys_AppScenario(t *testing.T) {
	// Subject urn:altinn:rolecode:styreleder, resource org=skd app=skattemelding.
	r := ruleWith(
		[]AttributeMatch{subjectMatch(RoleAttribute, "styreleder")},
		[]AttributeMatch{
			resourceMatch(OrgAttribute, "skd"),
			resourceMatch(AppAttribute, "skattemelding"),
		},
		[]AttributeMatch{actionMatch("read")},
	)

	keys := CalculateActionKeys(r)
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d: %v", len(keys), keys)
	}
	want := "urn:altinn:resource:app_skd_skattemelding:" + actionIDAttribute + ":read"
	if keys[0] != want {
		t.Errorf("key mismatch:\n got %q\nwant %q", keys[0], want)
	}
}

func TestCalculateActionKeys_OrderIndependent(t *testing.T) {
	a := resourceMatch(ResourceAttribute, "some-service")
	b := resourceMatch("urn:altinn:subresource", "part")
	action := actionMatch("write")

	keysAB := CalculateActionKeys(ruleWith([]AttributeMatch{a, b}, []AttributeMatch{action}))
	keysBA := CalculateActionKeys(ruleWith([]AttributeMatch{b, a}, []AttributeMatch{action}))

	if !reflect.DeepEqual(keysAB, keysBA) {
		t.Errorf("keys depend on attribute order: %v != %v", keysAB, keysBA)
	}
}

func TestCalculateActionKeys_AppNormalizationIdempotent(t *testing.T) {
	separate := ruleWith(
		[]AttributeMatch{
			resourceMatch(OrgAttribute, "skd"),
			resourceMatch(AppAttribute, "skattemelding"),
		},
		[]AttributeMatch{actionMatch("read")},
	)
	merged := ruleWith(
		[]AttributeMatch{resourceMatch(ResourceAttribute, "app_skd_skattemelding")},
		[]AttributeMatch{actionMatch("read")},
	)

	if !reflect.DeepEqual(CalculateActionKeys(separate), CalculateActionKeys(merged)) {
		t.Errorf("merged form should yield the same key as separate org/app attributes")
	}
}

func TestCalculateActionKeys_CartesianProduct(t *testing.T) {
	r := Rule{Target: Target{AnyOf: []AnyOf{
		{AllOf: []AllOf{
			{Matches: []AttributeMatch{resourceMatch(ResourceAttribute, "res-1")}},
			{Matches: []AttributeMatch{resourceMatch(ResourceAttribute, "res-2")}},
		}},
		{AllOf: []AllOf{
			{Matches: []AttributeMatch{actionMatch("read")}},
			{Matches: []AttributeMatch{actionMatch("write")}},
		}},
	}}}

	keys := CalculateActionKeys(r)
	if len(keys) != 4 {
		t.Fatalf("expected 2x2 keys, got %d: %v", len(keys), keys)
	}
}

func TestCalculateActionKeys_NoActionClause(t *testing.T) {
	r := ruleWith([]AttributeMatch{resourceMatch(ResourceAttribute, "res-1")})
	if keys := CalculateActionKeys(r); len(keys) != 0 {
		t.Errorf("rule without action clauses should yield no keys, got %v", keys)
	}
}

func TestCalculateActionKeys_PartialAppPairUntouched(t *testing.T) {
	// Org without app must not be merged away.
	r := ruleWith(
		[]AttributeMatch{resourceMatch(OrgAttribute, "skd")},
		[]AttributeMatch{actionMatch("read")},
	)
	keys := CalculateActionKeys(r)
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %v", keys)
	}
	want := OrgAttribute + ":skd:" + actionIDAttribute + ":read"
	if keys[0] != want {
		t.Errorf("got %q, want %q", keys[0], want)
	}
}

func TestFirstAccessorValues(t *testing.T) {
	r := Rule{Target: Target{AnyOf: []AnyOf{
		// Exactly one subject match: contributes.
		{AllOf: []AllOf{{Matches: []AttributeMatch{subjectMatch(RoleAttribute, "styreleder")}}}},
		// Two subject matches: ambiguous, skipped.
		{AllOf: []AllOf{{Matches: []AttributeMatch{
			subjectMatch(RoleAttribute, "dagl"),
			subjectMatch(AccessPackageAttribute, "regnskap"),
		}}}},
		// No subject match: skipped.
		{AllOf: []AllOf{{Matches: []AttributeMatch{actionMatch("read")}}}},
	}}}

	got := FirstAccessorValues(r, CategorySubject)
	want := []string{RoleAttribute + ":styreleder"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRemoveNonUserRules(t *testing.T) {
	in := []string{
		RoleAttribute + ":styreleder",
		"urn:altinn:org:skd",
		ExternalCCRRoleAttribute + ":dagl",
		"urn:altinn:userid:1234",
		AccessPackageAttribute + ":regnskap",
		ExternalCRARoleAttribute + ":revisor",
		"urn:altinn:person:01017012345",
	}

	got := RemoveNonUserRules(in)
	want := []string{
		RoleAttribute + ":styreleder",
		ExternalCCRRoleAttribute + ":dagl",
		AccessPackageAttribute + ":regnskap",
		ExternalCRARoleAttribute + ":revisor",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Idempotent, and output a subset of input.
	if !reflect.DeepEqual(RemoveNonUserRules(got), got) {
		t.Error("RemoveNonUserRules is not idempotent")
	}
}

func TestDecompose_MergesAccessorsByKey(t *testing.T) {
	p := &Policy{Rules: []Rule{
		{Target: Target{AnyOf: []AnyOf{
			{AllOf: []AllOf{{Matches: []AttributeMatch{subjectMatch(RoleAttribute, "styreleder")}}}},
			{AllOf: []AllOf{{Matches: []AttributeMatch{resourceMatch(ResourceAttribute, "skjema")}}}},
			{AllOf: []AllOf{{Matches: []AttributeMatch{actionMatch("read")}}}},
		}}},
		{Target: Target{AnyOf: []AnyOf{
			{AllOf: []AllOf{{Matches: []AttributeMatch{subjectMatch(AccessPackageAttribute, "regnskap")}}}},
			{AllOf: []AllOf{{Matches: []AttributeMatch{resourceMatch(ResourceAttribute, "skjema")}}}},
			{AllOf: []AllOf{{Matches: []AttributeMatch{actionMatch("read")}}}},
		}}},
	}}

	accesses := Decompose(p)
	if len(accesses) != 1 {
		t.Fatalf("expected one merged key, got %d: %+v", len(accesses), accesses)
	}
	want := []string{
		RoleAttribute + ":styreleder",
		AccessPackageAttribute + ":regnskap",
	}
	if !reflect.DeepEqual(accesses[0].AccessorUrns, want) {
		t.Errorf("accessors not merged by append: got %v, want %v", accesses[0].AccessorUrns, want)
	}
	if len(accesses[0].RoleAllowAccess) != 0 || len(accesses[0].PackageAllowAccess) != 0 {
		t.Error("decomposer must leave allow/deny buckets empty")
	}
}

func TestDecompose_DropsNonUserSubjects(t *testing.T) {
	p := &Policy{Rules: []Rule{
		{Target: Target{AnyOf: []AnyOf{
			{AllOf: []AllOf{{Matches: []AttributeMatch{subjectMatch("urn:altinn:org", "skd")}}}},
			{AllOf: []AllOf{{Matches: []AttributeMatch{resourceMatch(ResourceAttribute, "skjema")}}}},
			{AllOf: []AllOf{{Matches: []AttributeMatch{actionMatch("read")}}}},
		}}},
	}}

	accesses := Decompose(p)
	if len(accesses) != 1 {
		t.Fatalf("expected 1 key, got %d", len(accesses))
	}
	if len(accesses[0].AccessorUrns) != 0 {
		t.Errorf("service-owner subjects should be dropped, got %v", accesses[0].AccessorUrns)
	}
}

func TestDecompose_NilAndEmpty(t *testing.T) {
	if got := Decompose(nil); got != nil {
		t.Errorf("expected nil for nil policy, got %v", got)
	}
	if got := Decompose(&Policy{}); len(got) != 0 {
		t.Errorf("expected empty result for empty policy, got %v", got)
	}
}

func TestIsEndUserRule(t *testing.T) {
	roleSubject := PolicySubject{SubjectAttributes: []AttributeMatch{
		{ID: RoleAttribute, Value: "styreleder", Category: CategorySubject},
	}}
	orgSubject := PolicySubject{SubjectAttributes: []AttributeMatch{
		{ID: "urn:altinn:org", Value: "skd", Category: CategorySubject},
	}}

	tests := []struct {
		name string
		r    Right
		want bool
	}{
		{
			"role subject via app policy",
			Right{RightSources: []RightSource{{Type: RightSourceAppPolicy, PolicySubjects: []PolicySubject{roleSubject}}}},
			true,
		},
		{
			"role subject only via delegation policy",
			Right{RightSources: []RightSource{{Type: RightSourceDelegationPolicy, PolicySubjects: []PolicySubject{roleSubject}}}},
			false,
		},
		{
			"org subject only",
			Right{RightSources: []RightSource{{Type: RightSourceResourceRegistryPolicy, PolicySubjects: []PolicySubject{orgSubject}}}},
			false,
		},
		{
			"mixed sources",
			Right{RightSources: []RightSource{
				{Type: RightSourceDelegationPolicy, PolicySubjects: []PolicySubject{roleSubject}},
				{Type: RightSourceResourceRegistryPolicy, PolicySubjects: []PolicySubject{orgSubject, roleSubject}},
			}},
			true,
		},
		{"no sources", Right{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsEndUserRule(tt.r); got != tt.want {
				t.Errorf("IsEndUserRule() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccessListMode_NeverAppliesToPersons(t *testing.T) {
	res := &resource.Resource{AccessListMode: resource.AccessListEnabled}
	person := &entity.Type{Name: entity.TypePerson}
	org := &entity.Type{Name: entity.TypeOrganization}

	for _, delegable := range []bool{true, false} {
		r := Right{Delegable: delegable}
		if IsAccessListModeEnabledAndApplicable(r, res, person) {
			t.Errorf("delegable=%v: access list gating must never apply to persons", delegable)
		}
	}

	if !IsAccessListModeEnabledAndApplicable(Right{Delegable: true}, res, org) {
		t.Error("expected gating for delegable right, enabled mode, organization party")
	}
	if IsAccessListModeEnabledAndApplicable(Right{Delegable: false}, res, org) {
		t.Error("non-delegable right must not be gated")
	}
	if IsAccessListModeEnabledAndApplicable(Right{Delegable: true},
		&resource.Resource{AccessListMode: resource.AccessListDisabled}, org) {
		t.Error("disabled mode must not gate")
	}
	if IsAccessListModeEnabledAndApplicable(Right{Delegable: true}, nil, org) {
		t.Error("missing resource must not gate")
	}
}

func TestParseAppResourceID(t *testing.T) {
	tests := []struct {
		in       string
		org, app string
		ok       bool
	}{
		{"app_skd_skattemelding", "skd", "skattemelding", true},
		{"app_skd_skattemelding_v2", "skd", "skattemelding_v2", true},
		{"some-service", "", "", false},
		{"app_skd", "", "", false},
		{"app__x", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			org, app, ok := ParseAppResourceID(tt.in)
			if org != tt.org || app != tt.app || ok != tt.ok {
				t.Errorf("ParseAppResourceID(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.in, org, app, ok, tt.org, tt.app, tt.ok)
			}
		})
	}
}
