package accessgraph

import (
	"errors"
	"fmt"

	"github.com/digdir/accessgraph/validation"
)

var (
	// ErrAccessDenied is returned by Enforce-style callers when a gate
	// check is denied.
	ErrAccessDenied = errors.New("accessgraph: access denied")

	// ErrStoreRequired is returned when an engine is built without a store.
	ErrStoreRequired = errors.New("accessgraph: store is required")

	// ErrPartyRequired is returned when a check request lacks the acting
	// party or actor.
	ErrPartyRequired = errors.New("accessgraph: party and actor are required")
)

// ProblemError carries a composed validation problem across an error
// return. Callers unwrap it with errors.As to render the full report.
type ProblemError struct {
	Problem *validation.Problem
}

func (e *ProblemError) Error() string {
	if e.Problem == nil {
		return "accessgraph: validation failed"
	}
	return fmt.Sprintf("accessgraph: validation failed with %d errors", len(e.Problem.Errors))
}
