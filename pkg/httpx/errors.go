package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// Error codes written in the "error" field of a failure body.
const (
	CodeValidation         = "VALIDATION"
	CodeMissingField       = "MISSING_FIELD"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidCategory    = "INVALID_CATEGORY"
	CodeInvalidFileType    = "INVALID_FILE_TYPE"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL"
)

// APIError is a client-facing failure. Status picks the HTTP status, Code
// and Message form the body.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// NewError builds an APIError.
func NewError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

func BadRequest(code, message string) *APIError {
	return NewError(http.StatusBadRequest, code, message)
}

func Unauthenticated(message string) *APIError {
	return NewError(http.StatusUnauthorized, CodeUnauthenticated, message)
}

func Forbidden(message string) *APIError {
	return NewError(http.StatusForbidden, CodeForbidden, message)
}

func NotFound(message string) *APIError {
	return NewError(http.StatusNotFound, CodeNotFound, message)
}

// Internal is the only body a 5xx ever carries; details stay in the log.
func Internal() *APIError {
	return NewError(http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// WriteError writes err to w. Anything that is not an *APIError is logged
// and replaced by a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		slogx.FromContext(r.Context()).Error("unhandled error", "err", err)
		apiErr = Internal()
	}
	WriteJSON(w, apiErr.Status, apiErr)
}
