package domain

import "time"

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string // always lower-case
	PasswordHash string // bcrypt
	Role         Role
	Profile      *string
	Phone        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is what the API returns for a user. It never carries the
// password hash.
type PublicUser struct {
	UserID    string  `json:"user_id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	UserRole  Role    `json:"user_role"`
	Profile   *string `json:"profile"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		UserRole:  u.Role,
		Profile:   u.Profile,
	}
}
