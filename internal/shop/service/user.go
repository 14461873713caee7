package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/shop/domain"
	"github.com/aussiebroadwan/storefront/internal/shop/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

type UserService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
	Tokens jwtx.Issuer
}

// SignUpInput is the registration request. Role arrives as whatever the
// client sent and is clamped, never trusted.
type SignUpInput struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required"`
	Password  string  `json:"password" validate:"required"`
	Role      any     `json:"user_role"`
	Phone     *string `json:"phone"`
	Profile   *string `json:"profile"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates a user account.
func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (domain.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normaliseEmail(in.Email)
	if err := checkRequired(in); err != nil {
		return domain.User{}, err
	}

	_, err := s.Store.Users().GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return domain.User{}, ErrDuplicateEmail
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.ClampRole(in.Role),
		Phone:        trimPtr(in.Phone),
		Profile:      trimPtr(in.Profile),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index still catches a concurrent sign-up for the same email.
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	slogx.FromContext(ctx).Info("user signed up", "user_id", u.ID, "role", u.Role.String())
	return u, nil
}

// Login checks the credentials and issues a session token for the user.
func (s *UserService) Login(ctx context.Context, in LoginInput) (string, domain.User, error) {
	in.Email = normaliseEmail(in.Email)
	if err := checkRequired(in); err != nil {
		return "", domain.User{}, err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return "", domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return "", domain.User{}, fmt.Errorf("lookup email: %w", err)
	}

	if !s.Hasher.Verify(in.Password, u.PasswordHash) {
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(jwtx.Claims{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		UserRole:  int(u.Role),
	})
	if err != nil {
		return "", domain.User{}, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}
