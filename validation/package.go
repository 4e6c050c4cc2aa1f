package validation

import (
	"fmt"
	"strings"

	"github.com/digdir/accessgraph/accesspackage"
	"github.com/digdir/accessgraph/entity"
)

// PackageExists fails with PackageNotExists when the looked-up package is
// absent. The detail includes the name it was looked up by.
func PackageExists(p *accesspackage.Package, name, param string) Rule {
	mustParam(param)
	return func() Failure {
		if p != nil {
			return nil
		}
		return fail(CodePackageNotExists, param, fmt.Sprintf("package %q does not exist", name))
	}
}

// PackageIsAssignableToRecipient enforces the organization-only restriction
// on the reserved main administrator package: it may not be assigned when
// the recipient party is an organization.
func PackageIsAssignableToRecipient(packageURNs []string, toType *entity.Type, param string) Rule {
	mustParam(param)
	return func() Failure {
		if toType == nil || !strings.EqualFold(toType.Name, entity.TypeOrganization) {
			return nil
		}
		var blocked []string
		for _, urn := range packageURNs {
			if urn == accesspackage.MainAdministratorURN {
				blocked = append(blocked, urn)
			}
		}
		if len(blocked) == 0 {
			return nil
		}
		detail := fmt.Sprintf("packages [%s] cannot be assigned to a recipient of type %s",
			strings.Join(blocked, ", "), toType.Name)
		return fail(CodePackageIsNotAssignableToRecipient, param, detail)
	}
}

// PackageCheck pairs a package with the authorization verdict the gate
// already computed for it.
type PackageCheck struct {
	Package *accesspackage.Package
	Result  bool
}

// AuthorizePackageAssignment fails with UserNotAuthorized listing every
// package the caller was denied. The authorization itself has already been
// decided by the gate; this rule only reports it.
func AuthorizePackageAssignment(checks []PackageCheck, param string) Rule {
	mustParam(param)
	return func() Failure {
		var denied []string
		for _, c := range checks {
			if !c.Result {
				denied = append(denied, packageLabel(c.Package))
			}
		}
		if len(denied) == 0 {
			return nil
		}
		detail := fmt.Sprintf("not authorized to assign packages: %s", strings.Join(denied, ", "))
		return fail(CodeUserNotAuthorized, param, detail)
	}
}

func packageLabel(p *accesspackage.Package) string {
	if p == nil {
		return "<unknown>"
	}
	if p.URN != "" {
		return p.URN
	}
	return p.Name
}
