package http

import "github.com/aussiebroadwan/storefront/internal/shop/domain"

// ErrorResponse documents the failure body written by httpx.WriteError.
type ErrorResponse struct {
	Error   string `json:"error" example:"UNAUTHENTICATED"`
	Message string `json:"message" example:"Authentication required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	Message string            `json:"message"`
	User    domain.PublicUser `json:"user"`
}

type ProductResponse struct {
	Message string         `json:"message"`
	Product domain.Product `json:"product"`
}

type ProductsResponse struct {
	Message  string           `json:"message"`
	Products []domain.Product `json:"products"`
}

type CategoryResponse struct {
	Message  string          `json:"message"`
	Category domain.Category `json:"category"`
}

type CategoriesResponse struct {
	Message    string            `json:"message"`
	Categories []domain.Category `json:"categories"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Blob     string `json:"blob"`
}
