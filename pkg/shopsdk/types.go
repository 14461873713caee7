package shopsdk

import "time"

// Roles a user can hold.
const (
	RoleStandard = 1
	RoleAdmin    = 4
)

type User struct {
	UserID    string  `json:"user_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	UserRole  int     `json:"user_role"`
	Profile   *string `json:"profile"`
}

func (u User) IsAdmin() bool { return u.UserRole == RoleAdmin }

type SignUpRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	UserRole  *int    `json:"user_role,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Profile   *string `json:"profile,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Category struct {
	ID          string    `json:"category_id"`
	Name        string    `json:"category_name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type CategoryRequest struct {
	Name        string `json:"category_name"`
	Description string `json:"description"`
}

type Product struct {
	ID           string    `json:"product_id"`
	Name         string    `json:"product_name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"product_image"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Image is the file attached to a product create request.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ProductRequest is sent as a multipart form. Price is passed through as
// text so callers can exercise the server's own parsing.
type ProductRequest struct {
	Name        string
	Description string
	Price       string
	CategoryID  string
	Image       Image
}

type HealthChecks struct {
	Database string `json:"database"`
	Blob     string `json:"blob"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type userEnvelope struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type productEnvelope struct {
	Product Product `json:"product"`
}

type productsEnvelope struct {
	Products []Product `json:"products"`
}

type categoryEnvelope struct {
	Category Category `json:"category"`
}

type categoriesEnvelope struct {
	Categories []Category `json:"categories"`
}
