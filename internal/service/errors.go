package service

import "errors"

// Operation-level error taxonomy. Login and refresh deliberately collapse
// every failure cause into a single variant so callers cannot enumerate
// accounts; handlers map these onto HTTP statuses.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidResetToken   = errors.New("invalid or expired password reset token")
	ErrEmailTaken          = errors.New("email already exists")
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
)
