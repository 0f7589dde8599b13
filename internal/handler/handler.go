package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"inventory/internal/model"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful can reach the client.
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("request_id", middleware.GetReqID(r.Context())).
		Str("error", message).
		Str("code", code).
		Int("status", status).
		Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message, Code: code})
}

// writeDomainError maps a service error onto a status code and body.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("unexpected error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error: "internal server error",
			Code:  model.ErrCodeInternalError,
		})
		return
	}

	status := statusForKind(de.Kind)
	if len(de.Fields) > 0 {
		logger.Warn().
			Str("request_id", middleware.GetReqID(r.Context())).
			Interface("fields", de.Fields).
			Msg("validation failed")
		writeJSON(w, status, model.ValidationErrorResponse{Error: de.Message, Code: de.Code, Fields: de.Fields})
		return
	}
	writeError(w, r, status, de.Code, de.Message, logger)
}

func statusForKind(kind model.Kind) int {
	switch kind {
	case model.KindValidation, model.KindDuplicate, model.KindReferentialIntegrity:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a size-limited JSON body into v. An empty body is an error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
