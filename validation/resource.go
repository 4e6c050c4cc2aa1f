package validation

import (
	"fmt"
	"strings"

	"github.com/digdir/accessgraph/resource"
)

// ResourceExists fails with ResourceNotExists when the looked-up resource
// is absent.
func ResourceExists(r *resource.Resource, param string) Rule {
	mustParam(param)
	return func() Failure {
		if r != nil {
			return nil
		}
		return fail(CodeResourceNotExists, param, "resource does not exist")
	}
}

// ResourceIsDelegable fails with InvalidResource when the resource exists
// but is not open for delegation.
func ResourceIsDelegable(r *resource.Resource, param string) Rule {
	mustParam(param)
	return func() Failure {
		if r == nil || r.Delegable {
			return nil
		}
		return fail(CodeInvalidResource, param, fmt.Sprintf("resource %q is not delegable", r.RefID))
	}
}

// ResourceCheck pairs a resource with the authorization verdict the gate
// already computed for it.
type ResourceCheck struct {
	Resource *resource.Resource
	Result   bool
}

// AuthorizeResourceAssignment fails with UserNotAuthorized listing every
// resource the caller was denied.
func AuthorizeResourceAssignment(checks []ResourceCheck, param string) Rule {
	mustParam(param)
	return func() Failure {
		var denied []string
		for _, c := range checks {
			if !c.Result {
				label := "<unknown>"
				if c.Resource != nil {
					label = c.Resource.RefID
				}
				denied = append(denied, label)
			}
		}
		if len(denied) == 0 {
			return nil
		}
		detail := fmt.Sprintf("not authorized to assign resources: %s", strings.Join(denied, ", "))
		return fail(CodeUserNotAuthorized, param, detail)
	}
}
