package auth

import "context"

// Principal identifies the logged-in customer and their session.
type Principal struct {
	UserName  string
	SessionID string
}

type principalContextKey struct{}

// ContextWithPrincipal attaches the session principal to the context.
func ContextWithPrincipal(ctx context.Context, principal Principal) context.Context {
	if principal.UserName == "" {
		return ctx
	}
	return context.WithValue(ctx, principalContextKey{}, &principal)
}

// PrincipalFromContext extracts the session principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	v, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || v == nil {
		return Principal{}, false
	}
	return *v, true
}
