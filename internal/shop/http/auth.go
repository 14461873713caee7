package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/shop/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

type SignUpHandler struct {
	UserService *service.UserService
}

// ServeHTTP registers a new user.
//
//	@Summary		Sign up
//	@Description	Creates an account. The email is stored lower-cased. user_role is clamped to 1 (standard) or 4 (administrator); anything else becomes 1.
//	@Tags			Users
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			body	body		service.SignUpInput	true	"New user"
//	@Success		201		{object}	UserResponse		"Created user"
//	@Failure		400		{object}	ErrorResponse		"Missing field"
//	@Failure		409		{object}	ErrorResponse		"Email already registered"
//	@Failure		429		{object}	ErrorResponse		"Rate limited"
//	@Failure		500		{object}	ErrorResponse		"Internal server error"
//	@Router			/api/v1/sign-up [post].
func (h *SignUpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in service.SignUpInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	u, err := h.UserService.SignUp(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, apiError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, UserResponse{
		Message: "User registered successfully",
		User:    u.Public(),
	})
}

type LoginHandler struct {
	UserService *service.UserService
	Cookie      httpx.SessionCookie
	// Observe receives "success", "not_found", "bad_password" or "error".
	Observe func(outcome string)
}

// ServeHTTP checks credentials and sets the session cookie.
//
//	@Summary		Log in
//	@Description	Verifies email and password and sets the HttpOnly "token" cookie carrying a 24h HS256 session token.
//	@Tags			Users
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			body	body		service.LoginInput	true	"Credentials"
//	@Success		200		{object}	UserResponse		"Logged in"
//	@Failure		400		{object}	ErrorResponse		"Missing field"
//	@Failure		401		{object}	ErrorResponse		"Wrong password"
//	@Failure		404		{object}	ErrorResponse		"Unknown email"
//	@Failure		429		{object}	ErrorResponse		"Rate limited"
//	@Failure		500		{object}	ErrorResponse		"Internal server error"
//	@Router			/api/v1/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	token, u, err := h.UserService.Login(r.Context(), in)
	if err != nil {
		h.observe(loginOutcome(err))
		httpx.WriteError(w, r, apiError(err))
		return
	}
	h.observe("success")

	h.Cookie.Set(w, token)
	slogx.FromContext(r.Context()).Info("user logged in", "user_id", u.ID)

	httpx.WriteJSON(w, http.StatusOK, UserResponse{
		Message: "Login successful",
		User:    u.Public(),
	})
}

func (h *LoginHandler) observe(outcome string) {
	if h.Observe != nil {
		h.Observe(outcome)
	}
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "bad_password"
	case errors.Is(err, service.ErrMissingField):
		return "invalid"
	default:
		return "error"
	}
}

type LogoutHandler struct {
	Cookie httpx.SessionCookie
}

// ServeHTTP clears the session cookie. Tokens are not revoked server side;
// one copied elsewhere stays valid until it expires.
//
//	@Summary	Log out
//	@Tags		Users
//	@Produce	json
//	@Success	200	{object}	MessageResponse	"Cookie cleared"
//	@Router		/api/v1/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.Cookie.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "User Logout"})
}

type MeHandler struct {
	UserService *service.UserService
}

// ServeHTTP returns the current user, re-read from the store.
//
//	@Summary		Current user
//	@Description	Returns the account behind the session cookie.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	UserResponse	"Current user"
//	@Failure		401	{object}	ErrorResponse	"No valid session"
//	@Failure		404	{object}	ErrorResponse	"Account no longer exists"
//	@Security		SessionCookie
//	@Router			/api/v1/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, httpx.Unauthenticated("Authentication required"))
		return
	}

	u, err := h.UserService.GetUserByID(r.Context(), claims.ID)
	if err != nil {
		httpx.WriteError(w, r, apiError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserResponse{
		Message: "User fetched successfully",
		User:    u.Public(),
	})
}
