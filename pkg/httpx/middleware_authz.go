package httpx

import (
	"net/http"
	"slices"
)

// RolePredicate decides whether a role may pass.
type RolePredicate func(role int) bool

// RoleIs admits any of the listed roles.
func RoleIs(roles ...int) RolePredicate {
	return func(role int) bool {
		return slices.Contains(roles, role)
	}
}

// RequireRole must run after Authenticate. Anonymous requests and roles the
// predicate refuses get 403; a 401 is Authenticate's job.
func RequireRole(pred RolePredicate, onReject RejectFunc) Stage {
	if onReject == nil {
		onReject = func(string) {}
	}

	return Stage{
		Name: "require_role",
		Run: func(r *http.Request) (*http.Request, error) {
			switch p := PrincipalFromContext(r.Context()).(type) {
			case Authenticated:
				if pred(p.Claims.UserRole) {
					return r, nil
				}
			case Anonymous:
			}
			onReject("forbidden")
			return nil, Forbidden("Insufficient permissions")
		},
	}
}

// AuthzMiddleware is RequireRole in middleware form.
func AuthzMiddleware(pred RolePredicate) Middleware {
	return RequireRole(pred, nil).Middleware()
}
