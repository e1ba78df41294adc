package contexthelpers

import (
	"context"
)

func IsAuthenticated(ctx context.Context) bool {
	isAuthenticated, ok := ctx.Value(IsAuthenticatedContextKey).(bool)
	if !ok {
		return false
	}

	return isAuthenticated
}

// AuthenticatedUsername returns the username of the signed-in user or "" for anonymous requests.
func AuthenticatedUsername(ctx context.Context) string {
	username, ok := ctx.Value(AuthenticatedUsernameContextKey).(string)
	if !ok {
		return ""
	}

	return username
}

func TraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDContextKey).(string)
	if !ok {
		return ""
	}

	return traceID
}
