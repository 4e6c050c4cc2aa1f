package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/digdir/accessgraph/id"
	"github.com/digdir/accessgraph/store"
)

func TestWriteErrMapsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "idx_packages_urn"}
	err := writeErr("create package", fmt.Errorf("insert: %w", pgErr))
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
}

func TestWriteErrPassesThroughOtherErrors(t *testing.T) {
	inner := errors.New("connection reset")
	err := writeErr("create entity", inner)
	if errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("got ErrDuplicate for %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("lost inner error: %v", err)
	}
}

func TestIDColumnRoundTrip(t *testing.T) {
	eid := id.NewEntityID()
	if got := parseID(storeID(eid)); got != eid {
		t.Fatalf("round trip: got %s, want %s", got, eid)
	}
	if got := storeID(id.ID{}); got != "" {
		t.Fatalf("zero ID stored as %q, want empty", got)
	}
	if got := parseID(""); !got.IsNil() {
		t.Fatalf("empty column parsed as %s, want zero", got)
	}
}
