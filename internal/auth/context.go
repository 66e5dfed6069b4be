// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithAuth/FromContext for propagating auth info via context

package auth

import (
	"context"
)

// AuthContext holds the authenticated identity extracted from a request.
// Token is the raw bearer token as presented by the caller; it is forwarded
// unchanged to backend collaborators so every downstream call runs under the
// caller's own authorization.
type AuthContext struct {
	UserID string // subject of the verified token
	Token  string // raw bearer token, never rewritten or cached across callers
}

// authContextKey is the key type for storing AuthContext in context.Context.
type authContextKey struct{}

// WithAuth returns a new context with the AuthContext attached.
func WithAuth(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// FromContext retrieves the AuthContext from the context, returning nil if not present.
func FromContext(ctx context.Context) *AuthContext {
	val := ctx.Value(authContextKey{})
	if val == nil {
		return nil
	}
	ac, ok := val.(*AuthContext)
	if !ok {
		return nil
	}
	return ac
}

// MustFromContext retrieves the AuthContext from the context, panicking if not present.
func MustFromContext(ctx context.Context) *AuthContext {
	ac := FromContext(ctx)
	if ac == nil {
		panic("auth: AuthContext not found in context")
	}
	return ac
}
