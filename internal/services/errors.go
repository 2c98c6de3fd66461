package services

import "errors"

// Sentinel errors for handlers to map to user-facing messages.
var (
	ErrUserExists         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email address is already registered to another account")
)
