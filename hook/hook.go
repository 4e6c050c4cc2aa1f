// Package hook defines lifecycle hooks for the authorization engine.
// Hooks are notified of gate decisions and grant mutations and can react
// (audit forwarding, metrics, tracing). Each event is a separate interface so
// a hook opts in only to what it cares about.
package hook

import (
	"context"

	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/delegation"
	"github.com/digdir/accessgraph/id"
)

// Hook is the base interface all hooks must implement.
type Hook interface {
	// Name returns a unique human-readable name for the hook.
	Name() string
}

// BeforeCheck is called before a gate check is evaluated. The req parameter
// is the check request (passed as any to avoid an import cycle with the
// root package).
type BeforeCheck interface {
	OnBeforeCheck(ctx context.Context, req any) error
}

// AfterCheck is called after a gate check completes. The results parameter
// carries the per-item verdicts.
type AfterCheck interface {
	OnAfterCheck(ctx context.Context, req, results any) error
}

// PackageGranted is called after a package grant is persisted.
type PackageGranted interface {
	OnPackageGranted(ctx context.Context, a *assignment.Assignment, ap *assignment.Package) error
}

// AssignmentRevoked is called after an assignment is deleted.
type AssignmentRevoked interface {
	OnAssignmentRevoked(ctx context.Context, assignmentID id.ID) error
}

// DelegationCreated is called after a delegation is persisted.
type DelegationCreated interface {
	OnDelegationCreated(ctx context.Context, d *delegation.Delegation) error
}

// DelegationRevoked is called after a delegation is deleted.
type DelegationRevoked interface {
	OnDelegationRevoked(ctx context.Context, delegationID id.ID) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
