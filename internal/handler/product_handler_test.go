package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inventory/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, input model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) ReduceStock(ctx context.Context, id string, quantity int) (*model.Product, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func sampleProduct() *model.Product {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return &model.Product{
		ID:                "1",
		Name:              "Widget",
		CodIdentification: "W1",
		Stock:             5,
		Price:             1000,
		CreatedAt:         now,
		UpdatedAt:         now,
		Version:           1,
	}
}

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	minPrice := model.Price(500)
	maxStock := 10

	tests := []struct {
		name           string
		query          string
		expectedFilter *model.ProductFilter
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "No filter",
			query:          "",
			expectedFilter: &model.ProductFilter{},
			mockReturn:     []model.Product{*sampleProduct()},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "With filters",
			query: "?category=Tools&name=wid&minPrice=500&maxStock=10",
			expectedFilter: &model.ProductFilter{
				Category: "Tools",
				Name:     "wid",
				MinPrice: &minPrice,
				MaxStock: &maxStock,
			},
			mockReturn:     []model.Product{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid price filter",
			query:          "?minPrice=cheap",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
		},
		{
			name:           "Invalid stock filter",
			query:          "?minStock=1.5",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
		},
		{
			name:           "Service error",
			query:          "",
			expectedFilter: &model.ProductFilter{},
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			if tt.expectedFilter != nil {
				mockService.On("List", mock.Anything, *tt.expectedFilter).Return(tt.mockReturn, tt.mockError)
			}

			h := NewProductHandler(mockService, logger)
			req := httptest.NewRequest(http.MethodGet, "/api/products"+tt.query, nil)
			rec := httptest.NewRecorder()

			h.List(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec).Code)
			} else {
				var products []model.Product
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&products))
				assert.Len(t, products, len(tt.mockReturn))
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockProductService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			body: `{"name":"Widget","codIdentification":"W1","stock":5,"price":10}`,
			setupMock: func(m *MockProductService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(in model.ProductInput) bool {
					return in.Name == "Widget" && *in.Stock == 5 && *in.Price == 10
				})).Return(sampleProduct(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Decimal string price",
			body: `{"name":"Widget","codIdentification":"W1","stock":5,"price":"10.00"}`,
			setupMock: func(m *MockProductService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(in model.ProductInput) bool {
					return *in.Price == 1000
				})).Return(sampleProduct(), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Malformed JSON",
			body:           `{"name":`,
			setupMock:      func(m *MockProductService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Empty body",
			body:           ``,
			setupMock:      func(m *MockProductService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name: "Duplicate code",
			body: `{"name":"Widget","codIdentification":"W1","stock":5,"price":10}`,
			setupMock: func(m *MockProductService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, model.ErrDuplicateCode)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeDuplicateCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			tt.setupMock(mockService)

			h := NewProductHandler(mockService, logger)
			req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Create(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec).Code)
			} else {
				assert.Equal(t, "/api/products/1", rec.Header().Get("Location"))
				var product model.Product
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&product))
				assert.Equal(t, "1", product.ID)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_CreateValidationFields(t *testing.T) {
	mockService := new(MockProductService)
	mockService.On("Create", mock.Anything, mock.Anything).
		Return(nil, model.NewFieldValidationError(map[string]string{"name": "failed on rule: required"}))

	h := NewProductHandler(mockService, zerolog.Nop())
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"codIdentification":"W1"}`))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp model.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeValidation, resp.Code)
	assert.Equal(t, "failed on rule: required", resp.Fields["name"])
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		productID      string
		setupMock      func(*MockProductService)
		expectedStatus int
	}{
		{
			name:      "Success",
			productID: "1",
			setupMock: func(m *MockProductService) {
				m.On("GetByID", mock.Anything, "1").Return(sampleProduct(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "Not found",
			productID: "404",
			setupMock: func(m *MockProductService) {
				m.On("GetByID", mock.Anything, "404").Return(nil, model.ErrProductNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Missing ID",
			productID:      "",
			setupMock:      func(m *MockProductService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "Unexpected error",
			productID: "1",
			setupMock: func(m *MockProductService) {
				m.On("GetByID", mock.Anything, "1").Return(nil, errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			tt.setupMock(mockService)

			h := NewProductHandler(mockService, logger)
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/"+tt.productID, nil), "id", tt.productID)
			rec := httptest.NewRecorder()

			h.GetByID(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Update(t *testing.T) {
	logger := zerolog.Nop()

	updated := sampleProduct()
	updated.Stock = 3
	updated.Version = 2

	stockPatch := func(p model.ProductPatch) bool {
		return p.Stock != nil && *p.Stock == 3 && p.Name == nil
	}

	tests := []struct {
		name           string
		pathID         string
		body           string
		setupMock      func(*MockProductService)
		expectedStatus int
	}{
		{
			name:   "Path id",
			pathID: "1",
			body:   `{"stock":3}`,
			setupMock: func(m *MockProductService) {
				m.On("Update", mock.Anything, "1", mock.MatchedBy(stockPatch)).Return(updated, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Body id as string",
			body: `{"id":"1","stock":3}`,
			setupMock: func(m *MockProductService) {
				m.On("Update", mock.Anything, "1", mock.MatchedBy(stockPatch)).Return(updated, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Body id as number",
			body: `{"id":1,"stock":3}`,
			setupMock: func(m *MockProductService) {
				m.On("Update", mock.Anything, "1", mock.MatchedBy(stockPatch)).Return(updated, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing id",
			body:           `{"stock":3}`,
			setupMock:      func(m *MockProductService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "Not found",
			pathID: "9",
			body:   `{"stock":3}`,
			setupMock: func(m *MockProductService) {
				m.On("Update", mock.Anything, "9", mock.Anything).Return(nil, model.ErrProductNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "Version conflict",
			pathID: "1",
			body:   `{"stock":3,"version":1}`,
			setupMock: func(m *MockProductService) {
				m.On("Update", mock.Anything, "1", mock.Anything).Return(nil, model.ErrVersionConflict)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			tt.setupMock(mockService)

			h := NewProductHandler(mockService, logger)
			req := httptest.NewRequest(http.MethodPut, "/api/products", strings.NewReader(tt.body))
			if tt.pathID != "" {
				req = withURLParam(req, "id", tt.pathID)
			}
			rec := httptest.NewRecorder()

			h.Update(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				var product model.Product
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&product))
				assert.Equal(t, 3, product.Stock)
				assert.Equal(t, "Widget", product.Name)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Path id", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("Delete", mock.Anything, "1").Return(sampleProduct(), nil)

		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/products/1", nil), "id", "1")
		rec := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Delete(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Body id", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("Delete", mock.Anything, "1").Return(sampleProduct(), nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/products", strings.NewReader(`{"id":"1"}`))
		rec := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Delete(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Missing id", func(t *testing.T) {
		mockService := new(MockProductService)

		req := httptest.NewRequest(http.MethodDelete, "/api/products", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Delete(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, model.ErrCodeMissingField, decodeError(t, rec).Code)
	})

	t.Run("Not found", func(t *testing.T) {
		mockService := new(MockProductService)
		mockService.On("Delete", mock.Anything, "9").Return(nil, model.ErrProductNotFound)

		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/products/9", nil), "id", "9")
		rec := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Delete(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, model.ErrCodeProductNotFound, decodeError(t, rec).Code)
	})
}

func TestProductHandler_ReduceStock(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockProductService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "Success",
			body: `{"quantity":2}`,
			setupMock: func(m *MockProductService) {
				p := sampleProduct()
				p.Stock = 3
				m.On("ReduceStock", mock.Anything, "1", 2).Return(p, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Insufficient stock",
			body: `{"quantity":50}`,
			setupMock: func(m *MockProductService) {
				m.On("ReduceStock", mock.Anything, "1", 50).Return(nil, model.ErrInsufficientStock)
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInsufficientStock,
		},
		{
			name:           "Bad body",
			body:           `{"quantity":"two"}`,
			setupMock:      func(m *MockProductService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			tt.setupMock(mockService)

			req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/products/1/reduce-stock", strings.NewReader(tt.body)), "id", "1")
			rec := httptest.NewRecorder()
			NewProductHandler(mockService, logger).ReduceStock(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec).Code)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForKind(model.KindValidation))
	assert.Equal(t, http.StatusBadRequest, statusForKind(model.KindDuplicate))
	assert.Equal(t, http.StatusBadRequest, statusForKind(model.KindReferentialIntegrity))
	assert.Equal(t, http.StatusNotFound, statusForKind(model.KindNotFound))
	assert.Equal(t, http.StatusConflict, statusForKind(model.KindConflict))
	assert.Equal(t, http.StatusInternalServerError, statusForKind(model.Kind(99)))
}
