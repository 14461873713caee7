package httpx

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// SessionCookie sets, reads and clears the session cookie. Production
// cookies are Secure with SameSite=None so a separately hosted frontend can
// send them; otherwise Lax over plain HTTP.
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// NewSessionCookie returns the carrier for the given environment.
func NewSessionCookie(production bool, maxAge time.Duration) SessionCookie {
	return SessionCookie{
		Name:   SessionCookieName,
		Secure: production,
		MaxAge: maxAge,
	}
}

func (s SessionCookie) name() string {
	if s.Name == "" {
		return SessionCookieName
	}
	return s.Name
}

func (s SessionCookie) sameSite() http.SameSite {
	if s.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (s SessionCookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.name(),
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: s.sameSite(),
	}
}

// Set writes token into the cookie.
func (s SessionCookie) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, s.cookie(token, int(s.MaxAge/time.Second)))
}

// Clear overwrites the cookie with an empty value that expires after one
// second. Attributes match Set so the browser replaces the same cookie.
func (s SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", 1))
}

// Read returns the raw token, or "" when the cookie is absent.
func (s SessionCookie) Read(r *http.Request) string {
	c, err := r.Cookie(s.name())
	if err != nil {
		return ""
	}
	return c.Value
}
