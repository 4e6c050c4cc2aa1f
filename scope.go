package accessgraph

import (
	"context"

	"github.com/xraph/forge"
)

type requestScope struct {
	consumer string
}

// scopeFromContext extracts the calling consumer from forge.Scope or
// standalone context. Falls back to the explicit consumer if Forge scope is
// not set (standalone mode).
func scopeFromContext(ctx context.Context) requestScope {
	s, ok := forge.ScopeFrom(ctx)
	if ok {
		return requestScope{consumer: s.OrgID()}
	}
	return requestScope{consumer: consumerFromContext(ctx)}
}
