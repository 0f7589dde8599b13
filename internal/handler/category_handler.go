package handler

import (
	"net/http"
	"strings"

	"inventory/internal/model"
	"inventory/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler handles category registry requests.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

// List handles GET /api/products/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.CategoryList{Categories: categories})
}

// Create handles POST /api/products/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	category, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// Delete handles DELETE /api/products/categories. The name comes from the
// JSON body, or from the name query parameter when there is no body.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		var req model.CategoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
			return
		}
		name = req.Name
	}

	if _, err := h.service.Delete(r.Context(), name); err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Category deleted successfully"})
}
