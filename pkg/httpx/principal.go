package httpx

import (
	"context"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// Principal is who the request acts as. The only implementations are
// Anonymous and Authenticated.
type Principal interface {
	principal()
}

// Anonymous is the principal of a request that carried no valid session.
type Anonymous struct{}

// Authenticated carries the verified claims of the session token.
type Authenticated struct {
	Claims jwtx.Claims
}

func (Anonymous) principal()     {}
func (Authenticated) principal() {}

type principalKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the request principal, Anonymous if none.
func PrincipalFromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok && p != nil {
		return p
	}
	return Anonymous{}
}

// ClaimsFromContext is a shortcut for handlers behind Authenticate.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	if p, ok := PrincipalFromContext(ctx).(Authenticated); ok {
		return p.Claims, true
	}
	return jwtx.Claims{}, false
}
