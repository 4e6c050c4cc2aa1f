// Package decisionlog defines the audit record written for every gate
// decision.
package decisionlog

import (
	"time"

	"github.com/digdir/accessgraph/id"
)

// Entry is a single authorization decision audit record. The reason text
// mirrors the reason trail returned to the caller, so audits answer why a
// grant was allowed or refused, not just that it was.
type Entry struct {
	ID         id.ID     `json:"id" db:"id"`
	PartyID    id.ID     `json:"party_id" db:"party_id"`
	ActorID    id.ID     `json:"actor_id" db:"actor_id"`
	Kind       string    `json:"kind" db:"kind"` // "package" or "resource"
	Ref        string    `json:"ref" db:"ref"`   // package URN or resource ref
	Decision   string    `json:"decision" db:"decision"`
	Reason     string    `json:"reason,omitempty" db:"reason"`
	EvalTimeNs int64     `json:"eval_time_ns" db:"eval_time_ns"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying decision logs.
type QueryFilter struct {
	PartyID  *id.ID     `json:"party_id,omitempty"`
	ActorID  *id.ID     `json:"actor_id,omitempty"`
	Kind     string     `json:"kind,omitempty"`
	Ref      string     `json:"ref,omitempty"`
	Decision string     `json:"decision,omitempty"`
	After    *time.Time `json:"after,omitempty"`
	Before   *time.Time `json:"before,omitempty"`
	Limit    int        `json:"limit,omitempty"`
	Offset   int        `json:"offset,omitempty"`
}
