package handler

import (
	"errors"
	"net/http"
	"time"

	"inventory/internal/auth"
	"inventory/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// AuthHandler signs users in and reports the current session.
type AuthHandler struct {
	verifier auth.PasswordVerifier
	sessions *auth.SessionManager
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(verifier auth.PasswordVerifier, sessions *auth.SessionManager, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		verifier: verifier,
		sessions: sessions,
		validate: validator.New(),
		logger:   logger.With().Str("handler", "auth").Logger(),
	}
}

type sessionResponse struct {
	User      auth.Identity `json:"user"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "email and password are required", h.logger)
		return
	}

	identity, err := h.verifier.VerifyPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeBadCredentials, "the supplied credentials are invalid", h.logger)
		case errors.Is(err, auth.ErrUserNotFound):
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeUserNotFound, "user not found", h.logger)
		case errors.Is(err, auth.ErrUserDisabled):
			writeError(w, r, http.StatusForbidden, model.ErrCodeUserDisabled, "user is disabled", h.logger)
		case auth.IsUnavailable(err):
			h.logger.Error().Err(err).Msg("identity provider unavailable")
			writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeAuthUnavailable, "authentication is temporarily unavailable, try again", h.logger)
		default:
			h.logger.Error().Err(err).Msg("password verification failed")
			writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "an error occurred while authenticating, try again", h.logger)
		}
		return
	}

	session, err := h.sessions.Issue(*identity)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", identity.UserID).Msg("failed to issue session")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to issue session", h.logger)
		return
	}

	h.logger.Info().Str("user_id", identity.UserID).Msg("user signed in")
	writeJSON(w, http.StatusOK, session)
}

// Session handles GET /api/auth/session for an authenticated request.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "no active session", h.logger)
		return
	}

	resp := sessionResponse{
		User: auth.Identity{UserID: claims.UserID, Email: claims.Email},
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}

	writeJSON(w, http.StatusOK, resp)
}
