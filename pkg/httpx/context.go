package httpx

import "context"

type ctxKey string

const (
	CtxKeyFlowID ctxKey = "flow_id"
)

// WithFlowID stores the portal flow id on the context for key extractors and logs.
func WithFlowID(ctx context.Context, flowID string) context.Context {
	return context.WithValue(ctx, CtxKeyFlowID, flowID)
}

func flowIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyFlowID).(string); ok {
		return v
	}
	return ""
}
