package ctxutil

import "context"

type (
	traceDataKey   struct{}
	requestDataKey struct{}
)

// TraceData correlates log lines and spans for one HTTP request.
type TraceData struct {
	TraceID   string
	RequestID string
}

// RequestData is attached by the auth middleware once a bearer credential
// has been validated.
type RequestData struct {
	SubjectID int64
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, _ := ctx.Value(requestDataKey{}).(*RequestData)
	return rd
}

// SubjectID returns the authenticated subject, or 0 for anonymous requests.
func SubjectID(ctx context.Context) int64 {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.SubjectID
	}
	return 0
}
