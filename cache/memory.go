// Package cache provides caching implementations for gate check verdicts.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/digdir/accessgraph"
	"github.com/digdir/accessgraph/id"
)

// Compile-time interface check.
var _ accessgraph.Cache = (*Memory)(nil)

// Memory is an in-memory cache with TTL-based expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	packages  []*accessgraph.PackageCheckResult
	resources []*accessgraph.ResourceCheckResult
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     5 * time.Minute,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetPackageCheck returns cached package verdicts.
func (m *Memory) GetPackageCheck(_ context.Context, req *accessgraph.PackageCheckRequest) ([]*accessgraph.PackageCheckResult, bool) {
	e, ok := m.get(packageKey(req))
	if !ok {
		return nil, false
	}
	return e.packages, true
}

// SetPackageCheck stores package verdicts in the cache.
func (m *Memory) SetPackageCheck(_ context.Context, req *accessgraph.PackageCheckRequest, results []*accessgraph.PackageCheckResult) {
	m.set(packageKey(req), &entry{packages: results})
}

// GetResourceCheck returns cached resource verdicts.
func (m *Memory) GetResourceCheck(_ context.Context, req *accessgraph.ResourceCheckRequest) ([]*accessgraph.ResourceCheckResult, bool) {
	e, ok := m.get(resourceKey(req))
	if !ok {
		return nil, false
	}
	return e.resources, true
}

// SetResourceCheck stores resource verdicts in the cache.
func (m *Memory) SetResourceCheck(_ context.Context, req *accessgraph.ResourceCheckRequest, results []*accessgraph.ResourceCheckResult) {
	m.set(resourceKey(req), &entry{resources: results})
}

// InvalidateParty removes all cached verdicts where the party appears on
// either side of the check.
func (m *Memory) InvalidateParty(_ context.Context, partyID id.ID) {
	needle := partyID.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		party, actor := keyParties(k)
		if party == needle || actor == needle {
			delete(m.entries, k)
		}
	}
}

func (m *Memory) get(key string) (*entry, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return e, true
}

func (m *Memory) set(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Evict if at capacity.
	if len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			m.evictOne()
		}
	}

	e.expiresAt = time.Now().Add(m.ttl)
	m.entries[key] = e
}

// Keys are "party|actor|kind|ref,ref,...". Party and actor lead so
// invalidation can match on either without parsing the tail.
func packageKey(req *accessgraph.PackageCheckRequest) string {
	return req.PartyID.String() + "|" + req.ActorID.String() + "|pkg|" + strings.Join(req.PackageNames, ",")
}

func resourceKey(req *accessgraph.ResourceCheckRequest) string {
	return req.PartyID.String() + "|" + req.ActorID.String() + "|res|" +
		strings.Join(req.ResourceRefs, ",") + "|" + strings.Join(req.AccessListedRefs, ",")
}

func keyParties(key string) (party, actor string) {
	parts := strings.SplitN(key, "|", 3)
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], parts[1]
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (m *Memory) evictOne() {
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}
