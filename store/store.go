// Package store defines the aggregate persistence interface. Each subsystem
// (entity, role, accesspackage, resource, assignment, delegation,
// decisionlog) defines its own store interface; the composite Store
// composes them all. A single backend (Postgres, Memory) implements every
// one of them.
package store

import (
	"context"
	"errors"

	"github.com/digdir/accessgraph/accesspackage"
	"github.com/digdir/accessgraph/assignment"
	"github.com/digdir/accessgraph/decisionlog"
	"github.com/digdir/accessgraph/delegation"
	"github.com/digdir/accessgraph/entity"
	"github.com/digdir/accessgraph/resource"
	"github.com/digdir/accessgraph/role"
)

var (
	// ErrNotFound is the sentinel every backend wraps for missing rows, so
	// callers can build absence errors instead of handling panics.
	ErrNotFound = errors.New("accessgraph: not found")

	// ErrDuplicate is the sentinel for uniqueness violations, e.g. a second
	// assignment on the same (from, to, role) edge.
	ErrDuplicate = errors.New("accessgraph: duplicate")
)

// Store is the aggregate persistence interface.
type Store interface {
	entity.Store
	role.Store
	accesspackage.Store
	resource.Store
	assignment.Store
	delegation.Store
	decisionlog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
