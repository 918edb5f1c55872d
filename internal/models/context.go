package models

import "context"

type requestContextKey struct{}

// RequestContext identifies the caller behind an engine operation so log
// lines from different layers can be correlated.
type RequestContext struct {
	RequestId string
	Source    string // "http", "cli" or "scheduler"
}

// WithRequestContext attaches request metadata to a context.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// GetRequestContext retrieves request metadata from context, or nil if absent.
func GetRequestContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc
}

// RequestId returns the request id carried by ctx, or "".
func RequestId(ctx context.Context) string {
	if rc := GetRequestContext(ctx); rc != nil {
		return rc.RequestId
	}
	return ""
}
