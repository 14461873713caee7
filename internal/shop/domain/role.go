package domain

import (
	"math"
	"strconv"
	"strings"
)

// Role is the numeric user role stored with the account and carried in the
// session token.
type Role int

const (
	RoleStandard Role = 1
	RoleAdmin    Role = 4
)

func (r Role) Valid() bool { return r == RoleStandard || r == RoleAdmin }

func (r Role) String() string {
	switch r {
	case RoleStandard:
		return "standard"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown(" + strconv.Itoa(int(r)) + ")"
	}
}

// ClampRole turns a client-supplied role into a valid one. Integral 1 or 4
// (as a JSON number or a decimal string) are kept; anything else, including
// absent or non-numeric input, becomes RoleStandard.
func ClampRole(v any) Role {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		if x != math.Trunc(x) || x > math.MaxInt32 || x < math.MinInt32 {
			return RoleStandard
		}
		n = int(x)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return RoleStandard
		}
		n = i
	default:
		return RoleStandard
	}

	if r := Role(n); r.Valid() {
		return r
	}
	return RoleStandard
}
