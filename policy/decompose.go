package policy

import (
	"sort"
	"strings"

	"github.com/digdir/accessgraph/entity"
	"github.com/digdir/accessgraph/resource"
)

// userRulePrefixes are the subject URN prefixes an ordinary end user can
// satisfy through the role/package delegation path. Everything else (raw
// org, person or userid attributes) has no delegation path and is dropped.
var userRulePrefixes = []string{
	RoleAttribute,
	ExternalCCRRoleAttribute,
	ExternalCRARoleAttribute,
	AccessPackageAttribute,
}

// CalculateActionKeys reduces a rule into its set of canonical action keys:
// every resource clause crossed with every action clause. A rule with
// several resource or action alternatives therefore yields several keys.
//
// Within a clause, attributes are sorted case-insensitively by URN before
// concatenation, so key construction is independent of the order the policy
// author wrote the matches in. A resource clause carrying both an org and
// an app attribute is first merged into a single app resource attribute;
// this is the sole special-case normalization.
//
// Malformed rules degrade to fewer (possibly zero) keys; they never error.
func CalculateActionKeys(r Rule) []string {
	resourceKeys := clauseKeys(r, CategoryResource, true)
	actionKeys := clauseKeys(r, CategoryAction, false)

	keys := make([]string, 0, len(resourceKeys)*len(actionKeys))
	for _, rk := range resourceKeys {
		for _, ak := range actionKeys {
			keys = append(keys, rk+":"+ak)
		}
	}
	return keys
}

// clauseKeys builds one key per AllOf clause containing matches of the
// requested category.
func clauseKeys(r Rule, category string, normalizeApp bool) []string {
	var keys []string
	for _, anyOf := range r.Target.AnyOf {
		for _, allOf := range anyOf.AllOf {
			matches := matchesInCategory(allOf.Matches, category)
			if len(matches) == 0 {
				continue
			}
			if normalizeApp {
				matches = mergeAppResource(matches)
			}
			keys = append(keys, buildKey(matches))
		}
	}
	return keys
}

func matchesInCategory(matches []AttributeMatch, category string) []AttributeMatch {
	var out []AttributeMatch
	for _, m := range matches {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out
}

// mergeAppResource replaces an org+app attribute pair with a single
// synthesized resource attribute valued "app_{org}_{app}". Clauses with
// only one of the two attributes are left untouched.
func mergeAppResource(matches []AttributeMatch) []AttributeMatch {
	var org, app string
	var hasOrg, hasApp bool
	for _, m := range matches {
		switch m.ID {
		case OrgAttribute:
			org, hasOrg = m.Value, true
		case AppAttribute:
			app, hasApp = m.Value, true
		}
	}
	if !hasOrg || !hasApp {
		return matches
	}

	out := make([]AttributeMatch, 0, len(matches)-1)
	for _, m := range matches {
		if m.ID == OrgAttribute || m.ID == AppAttribute {
			continue
		}
		out = append(out, m)
	}
	return append(out, AttributeMatch{
		ID:       ResourceAttribute,
		Value:    AppResourcePrefix + org + "_" + app,
		Category: CategoryResource,
	})
}

// buildKey sorts the clause's attributes case-insensitively by URN and
// concatenates them as "Id:Value:Id:Value".
func buildKey(matches []AttributeMatch) string {
	sorted := make([]AttributeMatch, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].ID) < strings.ToLower(sorted[j].ID)
	})

	parts := make([]string, 0, len(sorted))
	for _, m := range sorted {
		parts = append(parts, m.ID+":"+m.Value)
	}
	return strings.Join(parts, ":")
}

// FirstAccessorValues extracts "AttributeId:Value" accessor strings from
// the rule's clauses for one category. Only clauses with exactly one match
// of the category contribute; ambiguous clauses (zero or several matches)
// are silently skipped rather than resolved into a single accessor.
func FirstAccessorValues(r Rule, category string) []string {
	var values []string
	for _, anyOf := range r.Target.AnyOf {
		for _, allOf := range anyOf.AllOf {
			matches := matchesInCategory(allOf.Matches, category)
			if len(matches) != 1 {
				continue
			}
			values = append(values, matches[0].ID+":"+matches[0].Value)
		}
	}
	return values
}

// RemoveNonUserRules keeps only subject URNs an end user can hold through
// role or access-package delegation. The result is always a subset of the
// input and the function is idempotent.
func RemoveNonUserRules(urns []string) []string {
	var out []string
	for _, urn := range urns {
		if isUserRuleURN(urn) {
			out = append(out, urn)
		}
	}
	return out
}

func isUserRuleURN(urn string) bool {
	for _, prefix := range userRulePrefixes {
		if strings.HasPrefix(urn, prefix) {
			return true
		}
	}
	return false
}

// Decompose reduces every rule of a policy into a flat list of ActionAccess
// records: one per canonical action key, with the end-user-reachable
// subject URNs the policy grants it to. Keys appearing in several rules
// merge by appending accessors, not by overwriting. The allow/deny buckets
// start empty; the authorization gate fills them per request.
//
// Decomposition is best effort: an authoring error in one rule degrades
// that rule alone, never the whole policy.
func Decompose(p *Policy) []ActionAccess {
	if p == nil {
		return nil
	}

	index := make(map[string]int)
	var accesses []ActionAccess

	for _, rule := range p.Rules {
		subjects := RemoveNonUserRules(FirstAccessorValues(rule, CategorySubject))
		for _, key := range CalculateActionKeys(rule) {
			i, ok := index[key]
			if !ok {
				i = len(accesses)
				index[key] = i
				accesses = append(accesses, ActionAccess{ActionKey: key})
			}
			accesses[i].AccessorUrns = append(accesses[i].AccessorUrns, subjects...)
		}
	}
	return accesses
}

// IsEndUserRule reports whether a right is reachable by an ordinary end
// user: at least one non-delegation source must carry a subject an end user
// can hold through the role/package path. A right reachable only through
// delegation-policy sources is a service-owner-only rule: no end user can
// ever hold it; the resource owner must grant it directly.
func IsEndUserRule(r Right) bool {
	for _, source := range r.RightSources {
		if source.Type == RightSourceDelegationPolicy {
			continue
		}
		for _, subject := range source.PolicySubjects {
			for _, attr := range subject.SubjectAttributes {
				if isUserRuleURN(attr.ID) {
					return true
				}
			}
		}
	}
	return false
}

// IsAccessListModeEnabledAndApplicable reports whether access list gating
// applies to delegating the right from the given party: the right must be
// delegable, the resource's access list mode enabled, and the acting party
// an organization. Persons are never subject to access list gating.
func IsAccessListModeEnabledAndApplicable(r Right, res *resource.Resource, fromType *entity.Type) bool {
	if res == nil || fromType == nil {
		return false
	}
	return AccessListModeApplies(r.Delegable, res.AccessListMode, fromType.Name)
}

// AccessListModeApplies is the raw-flag form of the access list check.
func AccessListModeApplies(delegable bool, mode resource.AccessListMode, entityTypeName string) bool {
	if !delegable {
		return false
	}
	if mode != resource.AccessListEnabled {
		return false
	}
	return strings.EqualFold(entityTypeName, entity.TypeOrganization)
}

// ParseAppResourceID splits an app resource id of the form "app_{org}_{app}"
// into its org and app parts. Ids without the app prefix, or with a missing
// org or app segment, report false with both outputs unset.
func ParseAppResourceID(resourceID string) (org, app string, ok bool) {
	if !strings.HasPrefix(resourceID, AppResourcePrefix) {
		return "", "", false
	}
	parts := strings.SplitN(resourceID, "_", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
