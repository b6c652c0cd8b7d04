package middleware

import (
	"context"

	"github.com/poornima-canteen/canteen-backend/internal/identity"
)

type contextKey string

const (
	ctxIdentity contextKey = "identity"
	ctxAccessID contextKey = "access_id"
)

// IdentityFromContext returns the authenticated identity, or nil.
func IdentityFromContext(ctx context.Context) *identity.Identity {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxIdentity).(*identity.Identity); ok {
		return v
	}
	return nil
}

// SubjectIDFromContext returns the authenticated principal id, or "".
func SubjectIDFromContext(ctx context.Context) string {
	if ident := IdentityFromContext(ctx); ident != nil {
		return ident.SubjectID
	}
	return ""
}

// AccessIDFromContext returns the session identifier behind the request.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithIdentity seeds the context for downstream handlers.
func WithIdentity(ctx context.Context, ident *identity.Identity, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxIdentity, ident)
	return context.WithValue(ctx, ctxAccessID, accessID)
}
