package accessgraph

import "context"

type contextKey int

const ctxKeyConsumer contextKey = iota

// WithConsumer returns a context carrying the calling consumer reference
// (e.g. the org number of the API client). Use this for standalone mode
// (without Forge).
func WithConsumer(ctx context.Context, consumer string) context.Context {
	return context.WithValue(ctx, ctxKeyConsumer, consumer)
}

func consumerFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyConsumer).(string)
	if !ok {
		return ""
	}
	return v
}
