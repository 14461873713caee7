package service

import "errors"

var (
	ErrMissingField       = errors.New("service: missing required field")
	ErrDuplicateEmail     = errors.New("service: email already registered")
	ErrUserNotFound       = errors.New("service: user not found")
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	ErrInvalidCategory    = errors.New("service: category does not exist")
	ErrInvalidPrice       = errors.New("service: invalid price")
)
