package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/storefront/internal/shop/service"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
)

// apiError maps service errors to client-facing ones. Unknown errors pass
// through and become a logged 500 in httpx.WriteError.
func apiError(err error) error {
	switch {
	case errors.Is(err, service.ErrMissingField):
		return httpx.BadRequest(httpx.CodeMissingField, strings.TrimPrefix(err.Error(), "service: "))
	case errors.Is(err, cryptox.ErrPasswordTooLong):
		return httpx.BadRequest(httpx.CodeValidation, "password must be at most 72 bytes")
	case errors.Is(err, service.ErrInvalidPrice):
		return httpx.BadRequest(httpx.CodeValidation, "price must be a non-negative number")
	case errors.Is(err, service.ErrInvalidCategory):
		return httpx.BadRequest(httpx.CodeInvalidCategory, "Invalid category_id")
	case errors.Is(err, service.ErrDuplicateEmail):
		return httpx.NewError(http.StatusConflict, httpx.CodeDuplicateEmail, "Email already exists")
	case errors.Is(err, service.ErrUserNotFound):
		return httpx.NotFound("User not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		return httpx.NewError(http.StatusUnauthorized, httpx.CodeInvalidCredentials, "Invalid password")
	}
	return err
}
