package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"inventory/internal/model"
	"inventory/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCategoryRepository is a mock implementation of CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteByName(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func TestCategoryService_Create(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	tests := []struct {
		name        string
		input       string
		setupMock   func(*MockCategoryRepository)
		expectError error
		expectKind  model.Kind
	}{
		{
			name:  "Success trims name",
			input: "  Tools ",
			setupMock: func(m *MockCategoryRepository) {
				m.On("Create", ctx, mock.MatchedBy(func(c *model.Category) bool {
					return c.Name == "Tools"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*model.Category).ID = "1"
				}).Return(nil)
			},
		},
		{
			name:       "Blank name",
			input:      "   ",
			setupMock:  func(m *MockCategoryRepository) {},
			expectKind: model.KindValidation,
		},
		{
			name:  "Duplicate",
			input: "Tools",
			setupMock: func(m *MockCategoryRepository) {
				m.On("Create", ctx, mock.Anything).Return(model.ErrDuplicateCategory)
			},
			expectError: model.ErrDuplicateCategory,
			expectKind:  model.KindDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockCategoryRepository)
			tt.setupMock(mockRepo)
			svc := NewCategoryService(mockRepo, logger)

			category, err := svc.Create(ctx, tt.input)

			if tt.expectKind == 0 {
				require.NoError(t, err)
				assert.Equal(t, "1", category.ID)
				assert.Equal(t, "Tools", category.Name)
			} else {
				require.Error(t, err)
				kind, ok := model.KindOf(err)
				require.True(t, ok)
				assert.Equal(t, tt.expectKind, kind)
				if tt.expectError != nil {
					assert.ErrorIs(t, err, tt.expectError)
				}
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestCategoryService_List(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockCategoryRepository)
	mockRepo.On("List", ctx).Return(nil, nil).Once()
	mockRepo.On("List", ctx).Return(nil, errors.New("database error")).Once()

	svc := NewCategoryService(mockRepo, zerolog.Nop())

	categories, err := svc.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)

	_, err = svc.List(ctx)
	assert.Error(t, err)
}

func TestCategoryService_DeleteBlockedWhileInUse(t *testing.T) {
	store, err := repository.OpenFileStore(filepath.Join(t.TempDir(), "store.json"), zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	products := NewProductService(store.Products(), zerolog.Nop())
	categories := NewCategoryService(store.Categories(), zerolog.Nop())

	_, err = categories.Create(ctx, "X")
	require.NoError(t, err)

	in := widgetInput()
	in.Category = "X"
	product, err := products.Create(ctx, in)
	require.NoError(t, err)

	_, err = categories.Delete(ctx, "X")
	require.Error(t, err)
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindReferentialIntegrity, kind)

	_, err = products.Delete(ctx, product.ID)
	require.NoError(t, err)

	removed, err := categories.Delete(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = categories.Delete(ctx, "X")
	assert.ErrorIs(t, err, model.ErrCategoryNotFound)
}

func TestCategoryService_DeleteValidation(t *testing.T) {
	mockRepo := new(MockCategoryRepository)
	svc := NewCategoryService(mockRepo, zerolog.Nop())

	_, err := svc.Delete(context.Background(), " ")
	kind, ok := model.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, model.KindValidation, kind)
	mockRepo.AssertNotCalled(t, "DeleteByName", mock.Anything, mock.Anything)
}
