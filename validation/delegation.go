package validation

import (
	"fmt"

	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/delegation"
	"github.com/digdir/accessgraph/id"
)

// DelegationExists fails with EntityNotExists when the looked-up delegation
// is absent.
func DelegationExists(d *delegation.Delegation, param string) Rule {
	mustParam(param)
	return func() Failure {
		if d != nil {
			return nil
		}
		return fail(CodeEntityNotExists, param, "delegation does not exist")
	}
}

// DelegationPivot enforces the chaining constraint of a delegation: the
// facilitator party must be the recipient of the providing assignment and
// the grantor of the receiving assignment. Without the pivot the two
// assignments are unrelated edges and no rights can flow between them.
func DelegationPivot(from, to *assignment.Assignment, facilitatorID id.ID, param string) Rule {
	mustParam(param)
	return func() Failure {
		// Existence is checked by AssignmentExists; nothing to pivot on here.
		if from == nil || to == nil {
			return nil
		}
		if from.ToID == facilitatorID && to.FromID == facilitatorID {
			return nil
		}
		detail := fmt.Sprintf("facilitator %s is not the pivot of assignments %s and %s",
			facilitatorID, from.ID, to.ID)
		return fail(CodeInvalidDelegation, param, detail)
	}
}
