package auth

import "context"

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying the session claims.
func WithClaims(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the session claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*SessionClaims)
	return claims, ok && claims != nil
}
