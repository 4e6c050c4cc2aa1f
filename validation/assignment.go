package validation

import (
	"fmt"
	"strings"

	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/id"
)

// AssignmentExists fails with EntityNotExists when the looked-up assignment
// is absent.
func AssignmentExists(a *assignment.Assignment, param string) Rule {
	mustParam(param)
	return func() Failure {
		if a != nil {
			return nil
		}
		return fail(CodeEntityNotExists, param, "assignment does not exist")
	}
}

// HasPackagesAssigned is the cascade guard run before an assignment or
// delegation delete: it fails while package attachments still reference the
// row, enumerating the blocking package ids.
func HasPackagesAssigned(packageIDs []id.ID, param string) Rule {
	mustParam(param)
	return func() Failure {
		if len(packageIDs) == 0 {
			return nil
		}
		detail := fmt.Sprintf("assignment still carries active packages: %s", joinIDs(packageIDs))
		return fail(CodeAssignmentIsActiveInOneOrMoreDelegations, param, detail)
	}
}

// HasDelegationsAssigned is the cascade guard that fails while delegations
// still depend on the assignment, enumerating the blocking delegation ids.
func HasDelegationsAssigned(delegationIDs []id.ID, param string) Rule {
	mustParam(param)
	return func() Failure {
		if len(delegationIDs) == 0 {
			return nil
		}
		detail := fmt.Sprintf("assignment has active connections: %s", joinIDs(delegationIDs))
		return fail(CodeAssignmentHasActiveConnections, param, detail)
	}
}

func joinIDs(ids []id.ID) string {
	parts := make([]string, len(ids))
	for i, v := range ids {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}
