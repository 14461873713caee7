package httpx

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// RejectFunc observes authentication and authorization rejections. The
// reason is a short label such as "missing", "expired" or "forbidden".
type RejectFunc func(reason string)

// Authenticate verifies the session cookie and attaches an Authenticated
// principal. It never touches the user store: the claims are trusted until
// the token expires.
func Authenticate(v jwtx.Verifier, cookie SessionCookie, onReject RejectFunc) Stage {
	if onReject == nil {
		onReject = func(string) {}
	}

	return Stage{
		Name: "authenticate",
		Run: func(r *http.Request) (*http.Request, error) {
			raw := cookie.Read(r)
			if raw == "" {
				onReject("missing")
				return nil, Unauthenticated("Authentication required")
			}

			claims, err := v.Verify(raw)
			if err != nil {
				reason := verifyReason(err)
				onReject(reason)
				slogx.FromContext(r.Context()).Warn("session token rejected", "reason", reason, "err", err)
				return nil, Unauthenticated("Invalid or expired session")
			}

			ctx := WithPrincipal(r.Context(), Authenticated{Claims: claims})
			ctx = slogx.With(ctx, "user_id", claims.ID)
			return r.WithContext(ctx), nil
		},
	}
}

// AuthnMiddleware is Authenticate in middleware form.
func AuthnMiddleware(v jwtx.Verifier, cookie SessionCookie) Middleware {
	return Authenticate(v, cookie, nil).Middleware()
}

func verifyReason(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return "expired"
	case errors.Is(err, jwtx.ErrInvalidSig):
		return "invalid_signature"
	case errors.Is(err, jwtx.ErrMissingSecret):
		return "no_secret"
	default:
		return "malformed"
	}
}
