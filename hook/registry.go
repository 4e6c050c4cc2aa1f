package hook

import (
	"context"
	"log/slog"

	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/delegation"
	"github.com/digdir/accessgraph/id"
)

// Named entry types pair a hook with its name for logging.

type beforeCheckEntry struct {
	name string
	hook BeforeCheck
}
type afterCheckEntry struct {
	name string
	hook AfterCheck
}
type packageGrantedEntry struct {
	name string
	hook PackageGranted
}
type assignmentRevokedEntry struct {
	name string
	hook AssignmentRevoked
}
type delegationCreatedEntry struct {
	name string
	hook DelegationCreated
}
type delegationRevokedEntry struct {
	name string
	hook DelegationRevoked
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry dispatches engine lifecycle events to registered hooks.
// Hook errors are logged and swallowed; a misbehaving hook never fails the
// authorization path.
type Registry struct {
	logger *slog.Logger
	hooks  []Hook

	beforeCheck       []beforeCheckEntry
	afterCheck        []afterCheckEntry
	packageGranted    []packageGrantedEntry
	assignmentRevoked []assignmentRevokedEntry
	delegationCreated []delegationCreatedEntry
	delegationRevoked []delegationRevokedEntry
	shutdown          []shutdownEntry
}

// NewRegistry creates a hook registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a hook and type-asserts it into all applicable event
// caches. Hooks are notified in registration order.
func (r *Registry) Register(h Hook) {
	r.hooks = append(r.hooks, h)
	name := h.Name()

	if e, ok := h.(BeforeCheck); ok {
		r.beforeCheck = append(r.beforeCheck, beforeCheckEntry{name, e})
	}
	if e, ok := h.(AfterCheck); ok {
		r.afterCheck = append(r.afterCheck, afterCheckEntry{name, e})
	}
	if e, ok := h.(PackageGranted); ok {
		r.packageGranted = append(r.packageGranted, packageGrantedEntry{name, e})
	}
	if e, ok := h.(AssignmentRevoked); ok {
		r.assignmentRevoked = append(r.assignmentRevoked, assignmentRevokedEntry{name, e})
	}
	if e, ok := h.(DelegationCreated); ok {
		r.delegationCreated = append(r.delegationCreated, delegationCreatedEntry{name, e})
	}
	if e, ok := h.(DelegationRevoked); ok {
		r.delegationRevoked = append(r.delegationRevoked, delegationRevokedEntry{name, e})
	}
	if e, ok := h.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, e})
	}
}

// Hooks returns all registered hooks.
func (r *Registry) Hooks() []Hook { return r.hooks }

// EmitBeforeCheck notifies all hooks that implement BeforeCheck.
func (r *Registry) EmitBeforeCheck(ctx context.Context, req any) {
	for _, e := range r.beforeCheck {
		if err := e.hook.OnBeforeCheck(ctx, req); err != nil {
			r.logHookError("OnBeforeCheck", e.name, err)
		}
	}
}

// EmitAfterCheck notifies all hooks that implement AfterCheck.
func (r *Registry) EmitAfterCheck(ctx context.Context, req, results any) {
	for _, e := range r.afterCheck {
		if err := e.hook.OnAfterCheck(ctx, req, results); err != nil {
			r.logHookError("OnAfterCheck", e.name, err)
		}
	}
}

// EmitPackageGranted notifies all hooks that implement PackageGranted.
func (r *Registry) EmitPackageGranted(ctx context.Context, a *assignment.Assignment, ap *assignment.Package) {
	for _, e := range r.packageGranted {
		if err := e.hook.OnPackageGranted(ctx, a, ap); err != nil {
			r.logHookError("OnPackageGranted", e.name, err)
		}
	}
}

// EmitAssignmentRevoked notifies all hooks that implement AssignmentRevoked.
func (r *Registry) EmitAssignmentRevoked(ctx context.Context, assignmentID id.ID) {
	for _, e := range r.assignmentRevoked {
		if err := e.hook.OnAssignmentRevoked(ctx, assignmentID); err != nil {
			r.logHookError("OnAssignmentRevoked", e.name, err)
		}
	}
}

// EmitDelegationCreated notifies all hooks that implement DelegationCreated.
func (r *Registry) EmitDelegationCreated(ctx context.Context, d *delegation.Delegation) {
	for _, e := range r.delegationCreated {
		if err := e.hook.OnDelegationCreated(ctx, d); err != nil {
			r.logHookError("OnDelegationCreated", e.name, err)
		}
	}
}

// EmitDelegationRevoked notifies all hooks that implement DelegationRevoked.
func (r *Registry) EmitDelegationRevoked(ctx context.Context, delegationID id.ID) {
	for _, e := range r.delegationRevoked {
		if err := e.hook.OnDelegationRevoked(ctx, delegationID); err != nil {
			r.logHookError("OnDelegationRevoked", e.name, err)
		}
	}
}

// EmitShutdown notifies all hooks that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

func (r *Registry) logHookError(event, name string, err error) {
	if r.logger == nil {
		return
	}
	r.logger.Warn("accessgraph hook error",
		slog.String("event", event),
		slog.String("hook", name),
		slog.String("error", err.Error()),
	)
}
