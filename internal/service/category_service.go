package service

import (
	"context"
	"fmt"
	"strings"

	"inventory/internal/model"
	"inventory/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo repository.CategoryRepository
	validate     *validator.Validate
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		validate:     newValidator(),
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	req := model.CategoryRequest{Name: strings.TrimSpace(name)}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	category := &model.Category{Name: req.Name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if passThrough(err) {
			s.logger.Warn().Err(err).Str("category", req.Name).Msg("category rejected")
			return nil, err
		}
		s.logger.Error().Err(err).Str("category", req.Name).Msg("failed to create category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().Str("category_id", category.ID).Str("category", category.Name).Msg("category created")
	return category, nil
}

// Delete removes every category matching name. The in-use check and the
// removal happen atomically in the repository.
func (s *categoryService) Delete(ctx context.Context, name string) (int, error) {
	req := model.CategoryRequest{Name: strings.TrimSpace(name)}
	if err := validateStruct(s.validate, req); err != nil {
		return 0, err
	}

	removed, err := s.categoryRepo.DeleteByName(ctx, req.Name)
	if err != nil {
		if passThrough(err) {
			s.logger.Warn().Err(err).Str("category", req.Name).Msg("category delete rejected")
			return 0, err
		}
		s.logger.Error().Err(err).Str("category", req.Name).Msg("failed to delete category")
		return 0, fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info().Str("category", req.Name).Int("removed", removed).Msg("category deleted")
	return removed, nil
}
