package cache

import (
	"context"
	"testing"
	"time"

	"github.com/digdir/accessgraph"
	"github.com/digdir/accessgraph/id"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	req := &accessgraph.PackageCheckRequest{
		PartyID:      id.NewEntityID(),
		ActorID:      id.NewEntityID(),
		PackageNames: []string{"urn:altinn:accesspackage:regnskap"},
	}
	results := []*accessgraph.PackageCheckResult{{Allowed: true}}

	// Miss
	_, ok := c.GetPackageCheck(ctx, req)
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.SetPackageCheck(ctx, req, results)
	got, ok := c.GetPackageCheck(ctx, req)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || !got[0].Allowed {
		t.Fatal("expected one allowed verdict")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	req := &accessgraph.PackageCheckRequest{
		PartyID:      id.NewEntityID(),
		ActorID:      id.NewEntityID(),
		PackageNames: []string{"urn:altinn:accesspackage:regnskap"},
	}

	c.SetPackageCheck(ctx, req, []*accessgraph.PackageCheckResult{{Allowed: true}})
	time.Sleep(5 * time.Millisecond)

	_, ok := c.GetPackageCheck(ctx, req)
	if ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheResourceChecks(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	req := &accessgraph.ResourceCheckRequest{
		PartyID:      id.NewEntityID(),
		ActorID:      id.NewEntityID(),
		ResourceRefs: []string{"app_skd_skattemelding"},
	}

	if _, ok := c.GetResourceCheck(ctx, req); ok {
		t.Fatal("expected cache miss")
	}

	c.SetResourceCheck(ctx, req, []*accessgraph.ResourceCheckResult{{Allowed: false}})
	got, ok := c.GetResourceCheck(ctx, req)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].Allowed {
		t.Fatal("expected one denied verdict")
	}

	// Access list membership is part of the key: a request with different
	// pre-approvals must not hit the same entry.
	withList := &accessgraph.ResourceCheckRequest{
		PartyID:          req.PartyID,
		ActorID:          req.ActorID,
		ResourceRefs:     req.ResourceRefs,
		AccessListedRefs: []string{"app_skd_skattemelding"},
	}
	if _, ok := c.GetResourceCheck(ctx, withList); ok {
		t.Fatal("expected miss for different access list")
	}
}

func TestMemoryCacheInvalidateParty(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	party := id.NewEntityID()
	actor := id.NewEntityID()
	other := id.NewEntityID()

	asParty := &accessgraph.PackageCheckRequest{PartyID: party, ActorID: actor, PackageNames: []string{"a"}}
	asActor := &accessgraph.PackageCheckRequest{PartyID: other, ActorID: party, PackageNames: []string{"b"}}
	unrelated := &accessgraph.PackageCheckRequest{PartyID: other, ActorID: actor, PackageNames: []string{"c"}}

	c.SetPackageCheck(ctx, asParty, []*accessgraph.PackageCheckResult{{Allowed: true}})
	c.SetPackageCheck(ctx, asActor, []*accessgraph.PackageCheckResult{{Allowed: true}})
	c.SetPackageCheck(ctx, unrelated, []*accessgraph.PackageCheckResult{{Allowed: true}})

	c.InvalidateParty(ctx, party)

	if _, ok := c.GetPackageCheck(ctx, asParty); ok {
		t.Fatal("verdicts with party as grantor should be invalidated")
	}
	if _, ok := c.GetPackageCheck(ctx, asActor); ok {
		t.Fatal("verdicts with party as actor should be invalidated")
	}
	if _, ok := c.GetPackageCheck(ctx, unrelated); !ok {
		t.Fatal("unrelated verdicts should still be cached")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		req := &accessgraph.PackageCheckRequest{
			PartyID:      id.NewEntityID(),
			ActorID:      id.NewEntityID(),
			PackageNames: []string{string(rune('a' + i))},
		}
		c.SetPackageCheck(ctx, req, []*accessgraph.PackageCheckResult{{Allowed: true}})
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}
