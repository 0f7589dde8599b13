package repository

import (
	"context"

	"inventory/internal/model"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves every product in storage order.
	List(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	// Returns nil without error when no product has the ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create assigns an ID and version 1 to the product and stores it.
	// Returns ErrDuplicateCode or ErrDuplicateName on collision.
	Create(ctx context.Context, product *model.Product) error

	// Update replaces the stored product. product.Version must equal the stored
	// version and is incremented on success. Returns ErrProductNotFound,
	// ErrVersionConflict, ErrDuplicateCode or ErrDuplicateName.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product and returns it.
	// Returns nil without error when no product has the ID.
	Delete(ctx context.Context, id string) (*model.Product, error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	// List retrieves every category in storage order.
	List(ctx context.Context) ([]model.Category, error)

	// Create assigns an ID and stores the category.
	// Returns ErrDuplicateCategory when the name is taken.
	Create(ctx context.Context, category *model.Category) error

	// DeleteByName removes every category with the name and returns how many
	// were removed. Fails with ErrCategoryInUse when a product references the
	// name and ErrCategoryNotFound when nothing matches. The reference check and
	// the removal are atomic.
	DeleteByName(ctx context.Context, name string) (int, error)
}
