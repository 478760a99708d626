package ctxutil

import "context"

type traceDataKey struct{}

// TraceData carries the correlation ids echoed on every response.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// CorrelationIDs returns the trace and request ids on ctx, empty when unset.
func CorrelationIDs(ctx context.Context) (traceID, requestID string) {
	if td := GetTraceData(ctx); td != nil {
		return td.TraceID, td.RequestID
	}
	return "", ""
}
