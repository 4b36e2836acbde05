package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// AdminHeader carries the acting admin's ID. It is recorded for audit
// (approvals, template edits) and is not an authentication mechanism.
const AdminHeader = "X-Admin-ID"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// AdminIDKey is the context key for storing the acting admin ID.
const AdminIDKey contextKey = "admin_id"

// GetAdminID extracts the acting admin ID from the context.
// Returns empty string if not found.
func GetAdminID(ctx context.Context) string {
	adminID, _ := ctx.Value(AdminIDKey).(string)
	return adminID
}

// WithAdminID returns a context carrying adminID.
func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, AdminIDKey, adminID)
}

// ActorInterceptor copies the X-Admin-ID header, when present, into the
// request context.
func ActorInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if adminID := strings.TrimSpace(req.Header().Get(AdminHeader)); adminID != "" {
				ctx = WithAdminID(ctx, adminID)
			}
			return next(ctx, req)
		}
	}
}
