package validation

import (
	"fmt"

	"github.com/digdir/accessgraph/role"
)

// RoleExists fails with RoleNotExists when the looked-up role is absent.
func RoleExists(r *role.Role, param string) Rule {
	mustParam(param)
	return func() Failure {
		if r != nil {
			return nil
		}
		return fail(CodeRoleNotExists, param, "role does not exist")
	}
}

// RoleByCodeExists is RoleExists with the looked-up code in the detail.
func RoleByCodeExists(r *role.Role, code, param string) Rule {
	mustParam(param)
	return func() Failure {
		if r != nil {
			return nil
		}
		return fail(CodeRoleNotExists, param, fmt.Sprintf("role %q does not exist", code))
	}
}
