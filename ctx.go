package webauth

import (
	"context"
)

var userIDCtxKey = &contextKey{"user_id"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithUserID sets the authenticated account id in the given context
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDCtxKey, id)
}

// UserIDFromContext finds the authenticated account id from the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(userIDCtxKey).(string)
	return raw, ok && raw != ""
}

// WithClaimsContext sets the TokenClaims in the given context
func WithClaimsContext(ctx context.Context, claims *TokenClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// ClaimsFromContext extracts the TokenClaims from the context
func ClaimsFromContext(ctx context.Context) (*TokenClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*TokenClaims)
	return raw, ok
}
