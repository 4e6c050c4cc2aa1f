package validation

import (
	"fmt"
	"strings"

	"github.com/digdir/accessgraph/accesspackage"
)

// PackageURNLookup checks that a package lookup by name resolved exactly
// the requested set. Two failure modes, both InvalidQueryParameter: no
// packages found at all, or a count mismatch between requested names and
// found packages (the symmetric difference is listed).
func PackageURNLookup(found []*accesspackage.Package, requested []string, param string) Rule {
	mustParam(param)
	return func() Failure {
		if len(requested) == 0 {
			return nil
		}
		if len(found) == 0 {
			detail := fmt.Sprintf("no packages found for names: %s", strings.Join(requested, ", "))
			return fail(CodeInvalidQueryParameter, param, detail)
		}
		if len(found) == len(requested) {
			return nil
		}
		detail := fmt.Sprintf("package lookup resolved %d of %d names, unmatched: %s",
			len(found), len(requested), strings.Join(unmatchedNames(found, requested), ", "))
		return fail(CodeInvalidQueryParameter, param, detail)
	}
}

// unmatchedNames returns the symmetric difference between the requested
// names and the found packages, matched case-insensitively on name or URN.
func unmatchedNames(found []*accesspackage.Package, requested []string) []string {
	matched := make(map[int]bool, len(found))
	var missing []string
	for _, name := range requested {
		hit := false
		for i, p := range found {
			if p == nil || matched[i] {
				continue
			}
			if strings.EqualFold(p.Name, name) || strings.EqualFold(p.URN, name) {
				matched[i] = true
				hit = true
				break
			}
		}
		if !hit {
			missing = append(missing, name)
		}
	}
	for i, p := range found {
		if p != nil && !matched[i] {
			missing = append(missing, p.Name)
		}
	}
	return missing
}
