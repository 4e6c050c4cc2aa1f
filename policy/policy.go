// Package policy models the parsed XACML rule trees a resource's policy is
// made of, and decomposes them into canonical action keys and subject
// classifications. The decomposer never fetches or parses raw policy
// documents; it consumes trees the policy source collaborator supplies.
package policy

// XACML attribute categories.
const (
	CategoryResource = "urn:oasis:names:tc:xacml:3.0:attribute-category:resource"
	CategoryAction   = "urn:oasis:names:tc:xacml:3.0:attribute-category:action"
	CategorySubject  = "urn:oasis:names:tc:xacml:1.0:subject-category:access-subject"
)

// Attribute URNs used in policy matches.
const (
	// OrgAttribute and AppAttribute identify an Altinn app by owner org and
	// app name. A resource clause carrying both is normalized into a single
	// ResourceAttribute with an "app_{org}_{app}" value.
	OrgAttribute = "urn:altinn:org"
	AppAttribute = "urn:altinn:app"

	// ResourceAttribute identifies a registry resource.
	ResourceAttribute = "urn:altinn:resource"

	// RoleAttribute identifies an Altinn role code subject.
	RoleAttribute = "urn:altinn:rolecode"

	// ExternalCCRRoleAttribute identifies a role sourced from the central
	// coordinating register for legal entities.
	ExternalCCRRoleAttribute = "urn:altinn:external-role:ccr"

	// ExternalCRARoleAttribute identifies a role sourced from the central
	// register of approvals.
	ExternalCRARoleAttribute = "urn:altinn:external-role:cra"

	// AccessPackageAttribute identifies an access package subject.
	AccessPackageAttribute = "urn:altinn:accesspackage"
)

// AppResourcePrefix marks a registry resource id that denotes an app.
const AppResourcePrefix = "app_"

/// Policy is a parsed XACML policy: a collection of rules.
type Policy struct {
	ID    string `json:"id,omitempty"`
	Rules []Rule `json:"rules"`
}

// Rule is a single XACML rule with its target tree.
type Rule struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
	Target      Target `json:"target"`
}

// Target holds the rule's AnyOf alternatives.
type Target struct {
	AnyOf []AnyOf `json:"any_of"`
}

// AnyOf is a disjunction of AllOf clauses.
type AnyOf struct {
	AllOf []AllOf `json:"all_of"`
}

// AllOf is a conjunction of attribute matches, one clause.
type AllOf struct {
	Matches []AttributeMatch `json:"matches"`
}

// AttributeMatch is a single attribute/value pair, the atomic unit the
// decomposer sorts and concatenates to build action keys.
type AttributeMatch struct {
	ID       string `json:"id"` // attribute URN
	Value    string `json:"value"`
	Type     string `json:"type,omitempty"` // XACML data type
	Category string `json:"category"`
}

/// ActionAccess is the decomposer's output for one canonical action key: the
// subject URNs the policy grants it to, plus the allow/deny classification
// buckets the authorization gate fills in afterwards.
type ActionAccess struct {
	ActionKey    string   `json:"action_key"`
	AccessorUrns []string `json:"accessor_urns"`

	RoleAllowAccess     []string `json:"role_allow_access,omitempty"`
	RoleDenyAccess      []string `json:"role_deny_access,omitempty"`
	PackageAllowAccess  []string `json:"package_allow_access,omitempty"`
	PackageDenyAccess   []string `json:"package_deny_access,omitempty"`
	ResourceAllowAccess []string `json:"resource_allow_access,omitempty"`
	ResourceDenyAccess  []string `json:"resource_deny_access,omitempty"`
}

// RightSourceType tags where a right's policy subjects come from.
type RightSourceType string

const (
	// RightSourceAppPolicy marks subjects from an app's own policy.
	RightSourceAppPolicy RightSourceType = "AppPolicy"

	// RightSourceResourceRegistryPolicy marks subjects from a registry
	// resource policy.
	RightSourceResourceRegistryPolicy RightSourceType = "ResourceRegistryPolicy"

	// RightSourceDelegationPolicy marks subjects granted through an earlier
	// delegation. These never make a rule end-user reachable on their own.
	RightSourceDelegationPolicy RightSourceType = "DelegationPolicy"
)

// PolicySubject is one subject clause of a right source.
type PolicySubject struct {
	SubjectAttributes []AttributeMatch `json:"subject_attributes"`
}

// RightSource is one origin of a right, with the subjects that reach it.
type RightSource struct {
	Type           RightSourceType `json:"type"`
	PolicySubjects []PolicySubject `json:"policy_subjects"`
}

// Right is one delegable right of a resource, with every source it can be
// obtained through.
type Right struct {
	RightKey     string        `json:"right_key"`
	Delegable    bool          `json:"delegable"`
	RightSources []RightSource `json:"right_sources"`
}
