package accessgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/digdir/accessgraph/accesspackage"
	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/decisionlog"
	"github.com/digdir/accessgraph/delegation"
	"github.com/digdir/accessgraph/hook"
	"github.com/digdir/accessgraph/id"
	"github.com/digdir/accessgraph/policy"
	"github.com/digdir/accessgraph/store"
)

// Engine is the authorization gate. It resolves the connections by which an
// actor can act for a party, matches them against package and resource
// grants, and answers allow/deny with a full reason trail.
type Engine struct {
	store  store.Store
	cache  Cache
	hooks  *hook.Registry
	logger *slog.Logger
	config Config
}

// NewEngine creates a new engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, ErrStoreRequired
	}
	return e, nil
}

// Store returns the underlying composite store.
func (e *Engine) Store() store.Store { return e.store }

// Hooks returns the hook registry (may be nil).
func (e *Engine) Hooks() *hook.Registry { return e.hooks }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown and notifies shutdown hooks.
func (e *Engine) Stop(ctx context.Context) error {
	if e.hooks != nil {
		e.hooks.EmitShutdown(ctx)
	}
	return nil
}

// Connections resolves every path by which the actor can act for the party:
// direct assignments, assignments inherited through a key role held over an
// intermediary, and delegation chains ending at the actor.
func (e *Engine) Connections(ctx context.Context, partyID, actorID id.ID) ([]*delegation.Connection, error) {
	if partyID.IsNil() || actorID.IsNil() {
		return nil, ErrPartyRequired
	}

	var conns []*delegation.Connection

	// Direct edges.
	direct, err := e.store.ListAssignments(ctx, &assignment.ListFilter{FromID: &partyID, ToID: &actorID})
	if err != nil {
		return nil, fmt.Errorf("accessgraph connections: %w", err)
	}
	for _, a := range direct {
		conns = append(conns, &delegation.Connection{
			FromID:       a.FromID,
			ToID:         a.ToID,
			RoleID:       a.RoleID,
			AssignmentID: a.ID,
		})
	}

	// Everything the actor holds, regardless of grantor. Feeds both the
	// key-role hop and the delegation lookup.
	held, err := e.store.ListAssignments(ctx, &assignment.ListFilter{ToID: &actorID})
	if err != nil {
		return nil, fmt.Errorf("accessgraph connections: %w", err)
	}

	if e.config.keyRolesEnabled() {
		for _, ha := range held {
			if ha.FromID == partyID {
				continue // covered as a direct edge
			}
			r, err := e.store.GetRole(ctx, ha.RoleID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue
				}
				return nil, fmt.Errorf("accessgraph connections: %w", err)
			}
			if !r.IsKeyRole {
				continue
			}
			// The actor manages ha.FromID through a key role. Any role the
			// party granted that intermediary flows through to the actor.
			inner, err := e.store.ListAssignments(ctx, &assignment.ListFilter{FromID: &partyID, ToID: &ha.FromID})
			if err != nil {
				return nil, fmt.Errorf("accessgraph connections: %w", err)
			}
			for _, ia := range inner {
				conns = append(conns, &delegation.Connection{
					FromID:       partyID,
					ToID:         actorID,
					RoleID:       ia.RoleID,
					AssignmentID: ia.ID,
					ViaID:        ha.FromID,
					ViaRoleID:    r.ID,
				})
			}
		}
	}

	if e.config.delegationsEnabled() {
		for _, ha := range held {
			dels, err := e.store.ListDelegationsForAssignment(ctx, ha.ID)
			if err != nil {
				return nil, fmt.Errorf("accessgraph connections: %w", err)
			}
			for _, d := range dels {
				if d.ToID != ha.ID {
					continue // actor must be on the receiving end
				}
				fa, err := e.store.GetAssignment(ctx, d.FromID)
				if err != nil {
					if errors.Is(err, store.ErrNotFound) {
						continue
					}
					return nil, fmt.Errorf("accessgraph connections: %w", err)
				}
				if fa.FromID != partyID {
					continue
				}
				conns = append(conns, &delegation.Connection{
					FromID:       partyID,
					ToID:         actorID,
					RoleID:       fa.RoleID,
					AssignmentID: fa.ID,
					DelegationID: d.ID,
					ViaID:        d.FacilitatorID,
				})
			}
		}
	}

	return conns, nil
}

// CheckPackageAssignment answers, per requested package, whether the actor
// may assign it on the party's behalf. This is the hot path.
func (e *Engine) CheckPackageAssignment(ctx context.Context, req *PackageCheckRequest) ([]*PackageCheckResult, error) {
	if req == nil || req.PartyID.IsNil() || req.ActorID.IsNil() {
		return nil, ErrPartyRequired
	}
	start := time.Now()
	scope := scopeFromContext(ctx)

	if e.cache != nil {
		if cached, ok := e.cache.GetPackageCheck(ctx, req); ok {
			return cached, nil
		}
	}
	if e.hooks != nil {
		e.hooks.EmitBeforeCheck(ctx, req)
	}

	conns, err := e.Connections(ctx, req.PartyID, req.ActorID)
	if err != nil {
		return nil, err
	}

	results := make([]*PackageCheckResult, 0, len(req.PackageNames))
	for _, name := range req.PackageNames {
		p, err := e.lookupPackage(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("accessgraph package check: %w", err)
		}
		res, err := e.checkPackage(ctx, conns, name, p)
		if err != nil {
			return nil, fmt.Errorf("accessgraph package check: %w", err)
		}
		e.logDecision(ctx, req.PartyID, req.ActorID, "package", name, packageDecision(p, res.Allowed), res.Reasons, start)
		results = append(results, res)
	}

	e.logger.Debug("package check",
		slog.String("consumer", scope.consumer),
		slog.String("party", req.PartyID.String()),
		slog.String("actor", req.ActorID.String()),
		slog.Int("packages", len(req.PackageNames)),
		slog.Duration("elapsed", time.Since(start)),
	)

	if e.cache != nil {
		e.cache.SetPackageCheck(ctx, req, results)
	}
	if e.hooks != nil {
		e.hooks.EmitAfterCheck(ctx, req, results)
	}
	return results, nil
}

// CheckResourceDelegation answers, per requested resource, whether the actor
// may delegate it on the party's behalf. Access list gating applies only
// when the party is an organization.
func (e *Engine) CheckResourceDelegation(ctx context.Context, req *ResourceCheckRequest) ([]*ResourceCheckResult, error) {
	if req == nil || req.PartyID.IsNil() || req.ActorID.IsNil() {
		return nil, ErrPartyRequired
	}
	start := time.Now()
	scope := scopeFromContext(ctx)

	if e.cache != nil {
		if cached, ok := e.cache.GetResourceCheck(ctx, req); ok {
			return cached, nil
		}
	}
	if e.hooks != nil {
		e.hooks.EmitBeforeCheck(ctx, req)
	}

	conns, err := e.Connections(ctx, req.PartyID, req.ActorID)
	if err != nil {
		return nil, err
	}

	partyTypeName, err := e.partyTypeName(ctx, req.PartyID)
	if err != nil {
		return nil, fmt.Errorf("accessgraph resource check: %w", err)
	}

	accessListed := make(map[string]bool, len(req.AccessListedRefs))
	for _, ref := range req.AccessListedRefs {
		accessListed[ref] = true
	}

	results := make([]*ResourceCheckResult, 0, len(req.ResourceRefs))
	for _, ref := range req.ResourceRefs {
		res, decision, err := e.checkResource(ctx, conns, ref, partyTypeName, accessListed[ref])
		if err != nil {
			return nil, fmt.Errorf("accessgraph resource check: %w", err)
		}
		e.logDecision(ctx, req.PartyID, req.ActorID, "resource", ref, decision, res.Reasons, start)
		results = append(results, res)
	}

	e.logger.Debug("resource check",
		slog.String("consumer", scope.consumer),
		slog.String("party", req.PartyID.String()),
		slog.String("actor", req.ActorID.String()),
		slog.Int("resources", len(req.ResourceRefs)),
		slog.Duration("elapsed", time.Since(start)),
	)

	if e.cache != nil {
		e.cache.SetResourceCheck(ctx, req, results)
	}
	if e.hooks != nil {
		e.hooks.EmitAfterCheck(ctx, req, results)
	}
	return results, nil
}

// EnforcePackageAssignment returns ErrAccessDenied unless every requested
// package is allowed.
func (e *Engine) EnforcePackageAssignment(ctx context.Context, req *PackageCheckRequest) error {
	results, err := e.CheckPackageAssignment(ctx, req)
	if err != nil {
		return fmt.Errorf("accessgraph check: %w", err)
	}
	for _, r := range results {
		if !r.Allowed {
			return fmt.Errorf("%w: %s", ErrAccessDenied, denialSummary(r.Reasons))
		}
	}
	return nil
}

func (e *Engine) checkPackage(ctx context.Context, conns []*delegation.Connection, name string, p *accesspackage.Package) (*PackageCheckResult, error) {
	if p == nil {
		return &PackageCheckResult{
			Reasons: []DelegationCheckReason{{Description: fmt.Sprintf("package %q does not exist", name)}},
		}, nil
	}

	res := &PackageCheckResult{Package: p}
	if !p.IsAssignable {
		res.Reasons = []DelegationCheckReason{{Description: "package is not assignable"}}
		return res, nil
	}

	reasons, err := e.grantingReasons(ctx, conns, p.ID)
	if err != nil {
		return nil, err
	}
	if len(reasons) > 0 {
		res.Allowed = true
		res.Reasons = reasons
		return res, nil
	}
	res.Reasons = []DelegationCheckReason{{Description: "no connection grants the package"}}
	return res, nil
}

func (e *Engine) checkResource(ctx context.Context, conns []*delegation.Connection, ref, partyTypeName string, accessListed bool) (*ResourceCheckResult, Decision, error) {
	r, err := e.store.GetResourceByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &ResourceCheckResult{
				Reasons: []DelegationCheckReason{{Description: fmt.Sprintf("resource %q does not exist", ref)}},
			}, DecisionDeny, nil
		}
		return nil, DecisionDeny, err
	}

	res := &ResourceCheckResult{Resource: r}
	if !r.Delegable {
		res.Reasons = []DelegationCheckReason{{Description: "resource is not delegable"}}
		return res, DecisionDenyNotAssignable, nil
	}
	if policy.AccessListModeApplies(r.Delegable, r.AccessListMode, partyTypeName) && !accessListed {
		res.Reasons = []DelegationCheckReason{{Description: "party is not on the resource access list"}}
		return res, DecisionDenyAccessList, nil
	}

	pkgIDs, err := e.store.ListResourcePackages(ctx, r.ID)
	if err != nil {
		return nil, DecisionDeny, err
	}
	for _, pkgID := range pkgIDs {
		reasons, err := e.grantingReasons(ctx, conns, pkgID)
		if err != nil {
			return nil, DecisionDeny, err
		}
		res.Reasons = append(res.Reasons, reasons...)
	}
	if len(res.Reasons) > 0 {
		res.Allowed = true
		return res, DecisionAllow, nil
	}
	res.Reasons = []DelegationCheckReason{{Description: "no connection grants a package containing the resource"}}
	return res, DecisionDeny, nil
}

// grantingReasons returns one reason per connection that grants the package,
// either through a delegable role link or a package attached directly to the
// connection's edge.
func (e *Engine) grantingReasons(ctx context.Context, conns []*delegation.Connection, packageID id.ID) ([]DelegationCheckReason, error) {
	links, err := e.store.ListPackageRoles(ctx, packageID)
	if err != nil {
		return nil, err
	}
	delegable := make(map[id.ID]bool, len(links))
	for _, l := range links {
		if l.CanDelegate {
			delegable[l.RoleID] = true
		}
	}

	var reasons []DelegationCheckReason
	for _, c := range conns {
		if delegable[c.RoleID] {
			reasons = append(reasons, e.connectionReason(ctx, c, connectionDescription(c)))
			continue
		}
		attached, err := e.edgeHasPackage(ctx, c, packageID)
		if err != nil {
			return nil, err
		}
		if attached {
			reasons = append(reasons, e.connectionReason(ctx, c, "package granted on connection"))
		}
	}
	return reasons, nil
}

func (e *Engine) edgeHasPackage(ctx context.Context, c *delegation.Connection, packageID id.ID) (bool, error) {
	aps, err := e.store.ListAssignmentPackages(ctx, c.AssignmentID)
	if err != nil {
		return false, err
	}
	for _, ap := range aps {
		if ap.PackageID == packageID {
			return true, nil
		}
	}
	if c.DelegationID.IsNil() {
		return false, nil
	}
	dps, err := e.store.ListDelegationPackages(ctx, c.DelegationID)
	if err != nil {
		return false, err
	}
	for _, dp := range dps {
		if dp.PackageID == packageID {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) connectionReason(ctx context.Context, c *delegation.Connection, desc string) DelegationCheckReason {
	reason := DelegationCheckReason{
		Description: desc,
		RoleID:      c.RoleID,
		FromID:      c.FromID,
		ToID:        c.ToID,
		ViaID:       c.ViaID,
		ViaRoleID:   c.ViaRoleID,
	}
	if r, err := e.store.GetRole(ctx, c.RoleID); err == nil {
		reason.RoleURN = r.URN
	}
	if !c.ViaRoleID.IsNil() {
		if vr, err := e.store.GetRole(ctx, c.ViaRoleID); err == nil {
			reason.ViaRoleURN = vr.URN
		}
	}
	return reason
}

func connectionDescription(c *delegation.Connection) string {
	switch {
	case !c.DelegationID.IsNil():
		return "access forwarded through delegation"
	case !c.ViaID.IsNil():
		return "access inherited through key role"
	default:
		return "role grants delegable access"
	}
}

// lookupPackage resolves a package by URN or display name. Returns nil when
// nothing matches; absence is a verdict, not an error.
func (e *Engine) lookupPackage(ctx context.Context, name string) (*accesspackage.Package, error) {
	if strings.HasPrefix(name, "urn:") {
		p, err := e.store.GetPackageByURN(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return p, err
	}
	pkgs, err := e.store.ListPackages(ctx, &accesspackage.ListFilter{Names: []string{name}})
	if err != nil {
		return nil, err
	}
	if len(pkgs) == 0 {
		return nil, nil
	}
	return pkgs[0], nil
}

func (e *Engine) partyTypeName(ctx context.Context, partyID id.ID) (string, error) {
	p, err := e.store.GetEntity(ctx, partyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	t, err := e.store.GetEntityType(ctx, p.TypeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return t.Name, nil
}

func (e *Engine) logDecision(ctx context.Context, partyID, actorID id.ID, kind, ref string, d Decision, reasons []DelegationCheckReason, start time.Time) {
	if !e.config.decisionLogEnabled() {
		return
	}
	entry := &decisionlog.Entry{
		ID:         id.NewDecisionLogID(),
		PartyID:    partyID,
		ActorID:    actorID,
		Kind:       kind,
		Ref:        ref,
		Decision:   string(d),
		Reason:     denialSummary(reasons),
		EvalTimeNs: time.Since(start).Nanoseconds(),
		CreatedAt:  time.Now(),
	}
	if err := e.store.CreateDecisionLog(ctx, entry); err != nil {
		e.logger.Warn("decision log write failed",
			slog.String("kind", kind),
			slog.String("ref", ref),
			slog.String("error", err.Error()),
		)
	}
}

func packageDecision(p *accesspackage.Package, allowed bool) Decision {
	if allowed {
		return DecisionAllow
	}
	if p != nil && !p.IsAssignable {
		return DecisionDenyNotAssignable
	}
	return DecisionDeny
}

func denialSummary(reasons []DelegationCheckReason) string {
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		parts = append(parts, r.Description)
	}
	return strings.Join(parts, "; ")
}
