package usecase

import "errors"

var (
	// ErrTooManyLoginAttempts indicates the caller exhausted the login window.
	ErrTooManyLoginAttempts = errors.New("too many failed login attempts, please try again later")
	// ErrInvalidOrExpiredCode indicates the supplied verification code does not
	// match the most recently issued one or is past its expiry.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrSessionNotFound indicates no live session exists for the token.
	ErrSessionNotFound = errors.New("session not found")
)
