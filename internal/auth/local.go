package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// LocalUser is one entry of the users file.
type LocalUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Disabled     bool   `json:"disabled,omitempty"`
}

// LocalVerifier checks passwords against bcrypt hashes held in memory.
type LocalVerifier struct {
	users  map[string]LocalUser
	logger zerolog.Logger
}

// NewLocalVerifier indexes users by lower-cased email.
func NewLocalVerifier(users []LocalUser, logger zerolog.Logger) *LocalVerifier {
	index := make(map[string]LocalUser, len(users))
	for _, u := range users {
		index[strings.ToLower(strings.TrimSpace(u.Email))] = u
	}
	return &LocalVerifier{
		users:  index,
		logger: logger.With().Str("component", "local_verifier").Logger(),
	}
}

// LoadLocalVerifier reads a JSON array of LocalUser from path.
func LoadLocalVerifier(path string, logger zerolog.Logger) (*LocalVerifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var users []LocalUser
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse users file %s: %w", path, err)
	}

	for i, u := range users {
		if u.ID == "" || u.Email == "" || u.PasswordHash == "" {
			return nil, fmt.Errorf("users file entry %d is missing id, email or passwordHash", i)
		}
	}

	logger.Info().Int("users", len(users)).Str("path", path).Msg("local users loaded")
	return NewLocalVerifier(users, logger), nil
}

// VerifyPassword implements PasswordVerifier.
func (v *LocalVerifier) VerifyPassword(ctx context.Context, email, password string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, ok := v.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrUserNotFound
	}
	if user.Disabled {
		return nil, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		v.logger.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return nil, ErrInvalidCredentials
	}

	return &Identity{UserID: user.ID, Email: user.Email}, nil
}

// HashPassword returns a bcrypt hash suitable for the users file.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
