package service

import (
	"context"

	"inventory/internal/model"
)

// ProductService defines operations for product management.
type ProductService interface {
	// List retrieves every product, narrowed by the filter when it is not empty.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create validates and stores a new product.
	Create(ctx context.Context, input model.ProductInput) (*model.Product, error)

	// Update merges the patch onto the stored product.
	Update(ctx context.Context, id string, patch model.ProductPatch) (*model.Product, error)

	// Delete removes a product and returns it.
	Delete(ctx context.Context, id string) (*model.Product, error)

	// ReduceStock takes quantity units out of a product's stock.
	ReduceStock(ctx context.Context, id string, quantity int) (*model.Product, error)
}

// CategoryService defines operations for the category registry.
type CategoryService interface {
	// List retrieves all categories.
	List(ctx context.Context) ([]model.Category, error)

	// Create registers a category name.
	Create(ctx context.Context, name string) (*model.Category, error)

	// Delete removes every category with the name unless a product uses it.
	Delete(ctx context.Context, name string) (int, error)
}
