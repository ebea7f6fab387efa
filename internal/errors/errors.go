package errors

import (
	"errors"
)

var (
	ErrTooManyLoginAttempts = errors.New("too many failed login attempts")
	ErrInvalidCredentials   = errors.New("incorrect email or password")
	ErrInputTooLong         = errors.New("input exceeds maximum length")
	ErrMissingCredentials   = errors.New("identifier and password are required")

	ErrUserNotFound      = errors.New("no account found for this recipient")
	ErrUserAlreadyExists = errors.New("an account with this email already exists")

	ErrOtpNotFound    = errors.New("verification code not found or expired")
	ErrOtpInvalid     = errors.New("incorrect verification code")
	ErrOtpMaxAttempts = errors.New("too many incorrect attempts, request a new code")
	ErrInvalidPurpose = errors.New("invalid otp purpose")

	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidToken    = errors.New("invalid token")
)
