package contexthelpers

import (
	"context"
	"net/http"
)

// WithAuthenticatedUsername marks ctx as belonging to username.
func WithAuthenticatedUsername(ctx context.Context, username string) context.Context {
	ctx = context.WithValue(ctx, IsAuthenticatedContextKey, true)
	return context.WithValue(ctx, AuthenticatedUsernameContextKey, username)
}

func AuthenticateContext(r *http.Request, username string) *http.Request {
	return r.WithContext(WithAuthenticatedUsername(r.Context(), username))
}

func SetTraceID(r *http.Request, traceID string) *http.Request {
	ctx := r.Context()
	ctx = context.WithValue(ctx, TraceIDContextKey, traceID)
	return r.WithContext(ctx)
}
