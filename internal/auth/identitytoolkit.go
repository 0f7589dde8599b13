package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// IdentityToolkitConfig configures the hosted password sign-in adapter.
type IdentityToolkitConfig struct {
	// URL is the signInWithPassword endpoint.
	URL    string
	APIKey string

	Timeout             time.Duration
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// IdentityToolkitVerifier signs users in against the hosted identity REST API.
type IdentityToolkitVerifier struct {
	cfg     IdentityToolkitConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*Identity]
	logger  zerolog.Logger
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type upstreamError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// errUpstream marks failures that say nothing about the credentials.
var errUpstream = errors.New("identity provider unavailable")

// NewIdentityToolkitVerifier creates the adapter. A nil client uses a client
// with cfg.Timeout.
func NewIdentityToolkitVerifier(cfg IdentityToolkitConfig, client *http.Client, logger zerolog.Logger) *IdentityToolkitVerifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	v := &IdentityToolkitVerifier{
		cfg:    cfg,
		client: client,
		logger: logger.With().Str("component", "identity_toolkit").Logger(),
	}

	v.breaker = gobreaker.NewCircuitBreaker[*Identity](gobreaker.Settings{
		Name:        "identity-toolkit",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// Rejected credentials are a healthy upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, errUpstream)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			v.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return v
}

// VerifyPassword implements PasswordVerifier.
func (v *IdentityToolkitVerifier) VerifyPassword(ctx context.Context, email, password string) (*Identity, error) {
	identity, err := v.breaker.Execute(func() (*Identity, error) {
		return v.signIn(ctx, email, password)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", errUpstream, err)
	}
	return identity, err
}

func (v *IdentityToolkitVerifier) signIn(ctx context.Context, email, password string) (*Identity, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sign-in request: %w", err)
	}

	endpoint, err := url.Parse(v.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid identity URL: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", v.cfg.APIKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error().Err(err).Msg("sign-in request failed")
		return nil, fmt.Errorf("%w: %v", errUpstream, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", errUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, v.mapError(resp.StatusCode, payload)
	}

	var out signInResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", errUpstream, err)
	}
	if out.LocalID == "" {
		return nil, fmt.Errorf("%w: response without user id", errUpstream)
	}

	if out.Email == "" {
		out.Email = email
	}
	return &Identity{UserID: out.LocalID, Email: out.Email, AccessToken: out.IDToken}, nil
}

// mapError translates the provider's error message into a sentinel.
func (v *IdentityToolkitVerifier) mapError(status int, payload []byte) error {
	var upstream upstreamError
	_ = json.Unmarshal(payload, &upstream)

	// Messages look like "INVALID_PASSWORD" or "TOO_MANY_ATTEMPTS_TRY_LATER : detail".
	code := strings.TrimSpace(strings.SplitN(upstream.Error.Message, ":", 2)[0])

	switch code {
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_PASSWORD", "INVALID_EMAIL", "MISSING_PASSWORD":
		return ErrInvalidCredentials
	case "EMAIL_NOT_FOUND":
		return ErrUserNotFound
	case "USER_DISABLED":
		return ErrUserDisabled
	}

	v.logger.Error().Int("status", status).Str("upstream_code", code).Msg("unexpected sign-in failure")
	return fmt.Errorf("%w: status %d %s", errUpstream, status, code)
}

// IsUnavailable reports whether err means the provider could not be reached
// or answered unexpectedly.
func IsUnavailable(err error) bool {
	return errors.Is(err, errUpstream)
}
