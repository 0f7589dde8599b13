package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory/internal/model"
	"inventory/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxWriteAttempts bounds how often an unversioned update is re-read and
// re-applied after losing a race to another writer.
const maxWriteAttempts = 3

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	validate    *validator.Validate
	now         func() time.Time
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		validate:    newValidator(),
		now:         time.Now,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// timestamp returns the current time in storage precision, strictly after prev.
func (s *productService) timestamp(prev time.Time) time.Time {
	t := s.now().UTC().Truncate(time.Microsecond)
	if !t.After(prev) {
		t = prev.Add(time.Microsecond)
	}
	return t
}

// List retrieves every product and applies the filter in memory.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}

	filtered := filter.Apply(products)

	s.logger.Debug().
		Int("total", len(products)).
		Int("returned", len(filtered)).
		Bool("filtered", !filter.IsEmpty()).
		Msg("listed products")

	return filtered, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, model.NewValidationError("product id is required")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create validates the input and stores a new product.
func (s *productService) Create(ctx context.Context, input model.ProductInput) (*model.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.CodIdentification = strings.TrimSpace(input.CodIdentification)
	input.Category = strings.TrimSpace(input.Category)
	input.ImageURL = strings.TrimSpace(input.ImageURL)

	if err := validateStruct(s.validate, input); err != nil {
		s.logger.Warn().Err(err).Msg("invalid product input")
		return nil, err
	}

	now := s.timestamp(time.Time{})
	product := &model.Product{
		Name:              input.Name,
		CodIdentification: input.CodIdentification,
		Description:       input.Description,
		Stock:             *input.Stock,
		Price:             *input.Price,
		Category:          input.Category,
		ImageURL:          input.ImageURL,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if passThrough(err) {
			s.logger.Warn().Err(err).Str("code", product.CodIdentification).Msg("product rejected")
			return nil, err
		}
		s.logger.Error().Err(err).Str("code", product.CodIdentification).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("code", product.CodIdentification).
		Msg("product created")

	return product, nil
}

// Update merges the patch onto the stored product. Without an explicit
// version the merge is retried on a fresh read when another write wins.
// Only the fields the patch carries are validated; stored fields it leaves
// alone are not re-checked.
func (s *productService) Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error) {
	patch = trimPatch(patch)
	if err := validateStruct(s.validate, patch); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("invalid product patch")
		return nil, err
	}

	return s.write(ctx, id, patch.Version, func(p *model.Product) error {
		patch.Apply(p)
		return nil
	})
}

// ReduceStock subtracts quantity from the product's stock.
func (s *productService) ReduceStock(ctx context.Context, id string, quantity int) (*model.Product, error) {
	if err := validateStruct(s.validate, model.StockReduction{Quantity: quantity}); err != nil {
		return nil, err
	}

	product, err := s.write(ctx, id, nil, func(p *model.Product) error {
		if quantity > p.Stock {
			return model.ErrInsufficientStock
		}
		p.Stock -= quantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", id).
		Int("quantity", quantity).
		Int("stock", product.Stock).
		Msg("stock reduced")

	return product, nil
}

// write runs a read-modify-write cycle against the repository. When expected
// is set the stored version must match it and no retry happens.
func (s *productService) write(ctx context.Context, id string, expected *int, change func(p *model.Product) error) (*model.Product, error) {
	attempts := maxWriteAttempts
	if expected != nil {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		product, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if expected != nil && *expected != product.Version {
			s.logger.Warn().
				Str("product_id", id).
				Int("stored_version", product.Version).
				Int("expected_version", *expected).
				Msg("stale product version")
			return nil, model.ErrVersionConflict
		}

		createdAt := product.CreatedAt
		if err := change(product); err != nil {
			return nil, err
		}
		product.ID = id
		product.CreatedAt = createdAt
		product.UpdatedAt = s.timestamp(product.UpdatedAt)

		err = s.productRepo.Update(ctx, product)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, model.ErrVersionConflict) {
			if passThrough(err) {
				return nil, err
			}
			s.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
			return nil, fmt.Errorf("failed to update product: %w", err)
		}

		lastErr = err
		s.logger.Debug().Str("product_id", id).Int("attempt", attempt).Msg("product changed concurrently")
	}

	return nil, lastErr
}

// Delete removes a product and returns the removed record.
func (s *productService) Delete(ctx context.Context, id string) (*model.Product, error) {
	if strings.TrimSpace(id) == "" {
		return nil, model.NewValidationError("product id is required")
	}

	removed, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	if removed == nil {
		return nil, model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return removed, nil
}

// trimPatch trims the patch's text fields the same way Create trims input,
// so a whitespace-only name fails validation.
func trimPatch(patch model.ProductPatch) model.ProductPatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	patch.Name = trim(patch.Name)
	patch.CodIdentification = trim(patch.CodIdentification)
	patch.Category = trim(patch.Category)
	patch.ImageURL = trim(patch.ImageURL)
	return patch
}
