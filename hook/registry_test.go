package hook

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/delegation"
	"github.com/digdir/accessgraph/id"
)

// testHook implements every event interface and records which were fired.
type testHook struct {
	name string

	beforeCheck       int
	afterCheck        int
	packageGranted    int
	assignmentRevoked int
	delegationCreated int
	delegationRevoked int
	shutdown          int

	fail bool
}

func (h *testHook) Name() string { return h.name }

func (h *testHook) OnBeforeCheck(ctx context.Context, req any) error {
	h.beforeCheck++
	return h.maybeFail()
}

func (h *testHook) OnAfterCheck(ctx context.Context, req, results any) error {
	h.afterCheck++
	return h.maybeFail()
}

func (h *testHook) OnPackageGranted(ctx context.Context, a *assignment.Assignment, ap *assignment.Package) error {
	h.packageGranted++
	return h.maybeFail()
}

func (h *testHook) OnAssignmentRevoked(ctx context.Context, assignmentID id.ID) error {
	h.assignmentRevoked++
	return h.maybeFail()
}

func (h *testHook) OnDelegationCreated(ctx context.Context, d *delegation.Delegation) error {
	h.delegationCreated++
	return h.maybeFail()
}

func (h *testHook) OnDelegationRevoked(ctx context.Context, delegationID id.ID) error {
	h.delegationRevoked++
	return h.maybeFail()
}

func (h *testHook) OnShutdown(ctx context.Context) error {
	h.shutdown++
	return h.maybeFail()
}

func (h *testHook) maybeFail() error {
	if h.fail {
		return errors.New("hook failed")
	}
	return nil
}

// minimalHook implements only the base interface.
type minimalHook struct{}

func (minimalHook) Name() string { return "minimal" }

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry(slog.Default())

	h := &testHook{name: "test"}
	r.Register(h)
	r.Register(minimalHook{})

	if got := len(r.Hooks()); got != 2 {
		t.Fatalf("Hooks() len = %d, want 2", got)
	}

	ctx := context.Background()
	r.EmitBeforeCheck(ctx, nil)
	r.EmitAfterCheck(ctx, nil, nil)
	r.EmitPackageGranted(ctx, &assignment.Assignment{}, &assignment.Package{})
	r.EmitAssignmentRevoked(ctx, id.New(id.PrefixAssignment))
	r.EmitDelegationCreated(ctx, &delegation.Delegation{})
	r.EmitDelegationRevoked(ctx, id.New(id.PrefixDelegation))
	r.EmitShutdown(ctx)

	checks := []struct {
		event string
		got   int
	}{
		{"BeforeCheck", h.beforeCheck},
		{"AfterCheck", h.afterCheck},
		{"PackageGranted", h.packageGranted},
		{"AssignmentRevoked", h.assignmentRevoked},
		{"DelegationCreated", h.delegationCreated},
		{"DelegationRevoked", h.delegationRevoked},
		{"Shutdown", h.shutdown},
	}
	for _, c := range checks {
		if c.got != 1 {
			t.Errorf("%s fired %d times, want 1", c.event, c.got)
		}
	}
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry(nil)

	var order []string
	first := &orderedHook{name: "first", order: &order}
	second := &orderedHook{name: "second", order: &order}
	r.Register(first)
	r.Register(second)

	r.EmitShutdown(context.Background())

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("dispatch order = %v, want [first second]", order)
	}
}

type orderedHook struct {
	name  string
	order *[]string
}

func (h *orderedHook) Name() string { return h.name }

func (h *orderedHook) OnShutdown(ctx context.Context) error {
	*h.order = append(*h.order, h.name)
	return nil
}

func TestRegistryHookErrorDoesNotStopDispatch(t *testing.T) {
	r := NewRegistry(slog.Default())

	failing := &testHook{name: "failing", fail: true}
	ok := &testHook{name: "ok"}
	r.Register(failing)
	r.Register(ok)

	r.EmitShutdown(context.Background())

	if failing.shutdown != 1 || ok.shutdown != 1 {
		t.Fatalf("shutdown counts = %d, %d, want 1, 1", failing.shutdown, ok.shutdown)
	}
}

func TestRegistryEmptyEmit(t *testing.T) {
	r := NewRegistry(nil)

	// No hooks registered; emits must not panic.
	ctx := context.Background()
	r.EmitBeforeCheck(ctx, nil)
	r.EmitAfterCheck(ctx, nil, nil)
	r.EmitShutdown(ctx)
}
