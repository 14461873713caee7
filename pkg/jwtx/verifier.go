package jwtx

import "errors"

// Verifier validates a session token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// Issuer signs a claim set into a session token.
type Issuer interface {
	Issue(Claims) (string, error)
}

var (
	ErrMalformed     = errors.New("jwtx: malformed token")
	ErrExpired       = errors.New("jwtx: token expired")
	ErrInvalidSig    = errors.New("jwtx: invalid signature")
	ErrMissingSecret = errors.New("jwtx: signing secret not configured")
)
