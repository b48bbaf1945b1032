package billcommon

import (
	"context"
)

// ctxKeyType represents the type for all context keys
type ctxKeyType string

const (
	ctxWorkspaceIdKey ctxKeyType = "BillingWorkspaceId"
	ctxTestContextKey ctxKeyType = "BillingTestContext"
)

// WithWorkspaceID sets the workspace ID in the provided context.
func WithWorkspaceID(ctx context.Context, workspaceID WorkspaceId) context.Context {
	return context.WithValue(ctx, ctxWorkspaceIdKey, workspaceID)
}

// GetWorkspaceID retrieves the workspace ID from the provided context.
// Returns the empty string when no workspace is set.
func GetWorkspaceID(ctx context.Context) WorkspaceId {
	if workspaceID, ok := ctx.Value(ctxWorkspaceIdKey).(WorkspaceId); ok {
		return workspaceID
	}
	return ""
}

// WithTestContext marks the context as a test context.
func WithTestContext(ctx context.Context, v string) context.Context {
	return context.WithValue(ctx, ctxTestContextKey, v)
}

// GetTestContext retrieves the test context marker, if any.
func GetTestContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxTestContextKey).(string); ok {
		return v
	}
	return ""
}
