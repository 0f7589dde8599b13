// Package auth verifies user credentials and issues the session tokens that
// guard the inventory API.
package auth

import (
	"context"
	"errors"
)

var (
	// ErrInvalidCredentials is returned when the email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when no account exists for the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserDisabled is returned when the account exists but may not sign in.
	ErrUserDisabled = errors.New("user disabled")
	// ErrInvalidToken is returned when a session token is malformed or forged.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a session token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// Identity is a verified user.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`

	// AccessToken is the upstream provider's token, empty for local accounts.
	AccessToken string `json:"-"`
}

// PasswordVerifier checks an email and password pair.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (*Identity, error)
}
