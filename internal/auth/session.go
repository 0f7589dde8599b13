package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "inventory"

// SessionClaims are carried by a session token.
type SessionClaims struct {
	UserID      string `json:"id"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken,omitempty"`
	jwt.RegisteredClaims
}

// Session is an issued token and the identity it carries.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Identity  `json:"user"`
}

// SessionManager issues and validates HS256 session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a SessionManager signing with secret.
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a session token for a verified identity.
func (m *SessionManager) Issue(identity Identity) (*Session, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := SessionClaims{
		UserID:      identity.UserID,
		Email:       identity.Email,
		AccessToken: identity.AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   identity.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     signed,
		ExpiresAt: expiresAt.UTC().Truncate(time.Second),
		User:      identity,
	}, nil
}

// Validate checks the token signature and expiry and returns its claims.
func (m *SessionManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
