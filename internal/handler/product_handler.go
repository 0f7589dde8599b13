package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"inventory/internal/model"
	"inventory/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// productUpdateRequest is a patch that may carry the target id in the body.
type productUpdateRequest struct {
	ID model.RecordID `json:"id"`
	model.ProductPatch
}

type productDeleteRequest struct {
	ID model.RecordID `json:"id"`
}

// List handles GET /api/products with optional filter query parameters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidation, err.Error(), h.logger)
		return
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.ProductInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/products/"+url.PathEscape(product.ID))
	writeJSON(w, http.StatusCreated, product)
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(chi.URLParam(r, "id"))
	if productID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "product ID is required", h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), productID)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Update handles PUT /api/products/{id} and PUT /api/products with the id in
// the body. A path id takes precedence over a body id.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req productUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "id"))
	if productID == "" {
		productID = string(req.ID)
	}
	if productID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "product ID is required", h.logger)
		return
	}

	product, err := h.service.Update(r.Context(), productID, req.ProductPatch)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id} and DELETE /api/products with the
// id in the body. The removed product is returned.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(chi.URLParam(r, "id"))
	if productID == "" {
		var req productDeleteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
			return
		}
		productID = string(req.ID)
	}
	if productID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "product ID is required", h.logger)
		return
	}

	removed, err := h.service.Delete(r.Context(), productID)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, removed)
}

// ReduceStock handles POST /api/products/{id}/reduce-stock.
func (h *ProductHandler) ReduceStock(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(chi.URLParam(r, "id"))

	var req model.StockReduction
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	product, err := h.service.ReduceStock(r.Context(), productID, req.Quantity)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// parseFilter reads category, name, code, minPrice, maxPrice, minStock and
// maxStock. Prices are integer minor units.
func parseFilter(q url.Values) (model.ProductFilter, error) {
	filter := model.ProductFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Name:     strings.TrimSpace(q.Get("name")),
		Code:     strings.TrimSpace(q.Get("code")),
	}

	var err error
	if filter.MinPrice, err = priceParam(q, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = priceParam(q, "maxPrice"); err != nil {
		return filter, err
	}
	if filter.MinStock, err = intParam(q, "minStock"); err != nil {
		return filter, err
	}
	if filter.MaxStock, err = intParam(q, "maxStock"); err != nil {
		return filter, err
	}

	return filter, nil
}

func intParam(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, model.NewValidationError("invalid " + key + " parameter")
	}
	return &v, nil
}

func priceParam(q url.Values, key string) (*model.Price, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, model.NewValidationError("invalid " + key + " parameter")
	}
	p := model.Price(v)
	return &p, nil
}
