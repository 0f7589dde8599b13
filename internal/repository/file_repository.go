package repository

import (
	"context"

	"inventory/internal/model"
)

// fileProductRepository implements ProductRepository on a FileStore.
type fileProductRepository struct {
	store *FileStore
}

// List retrieves every product in storage order.
func (r *fileProductRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.store.read(ctx, func(doc *document) {
		products = append(make([]model.Product, 0, len(doc.Products)), doc.Products...)
	})
	return products, err
}

// GetByID retrieves a single product by its ID.
func (r *fileProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var found *model.Product
	err := r.store.read(ctx, func(doc *document) {
		for i := range doc.Products {
			if doc.Products[i].ID == id {
				p := doc.Products[i]
				found = &p
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		r.store.logger.Debug().Str("product_id", id).Msg("product not found")
	}
	return found, nil
}

// Create appends the product with the next integer key.
func (r *fileProductRepository) Create(ctx context.Context, product *model.Product) error {
	return r.store.mutate(ctx, func(doc *document) error {
		candidate := *product
		candidate.ID = ""
		if err := checkProductUnique(doc.Products, &candidate); err != nil {
			return err
		}

		ids := make([]string, len(doc.Products))
		for i, p := range doc.Products {
			ids[i] = p.ID
		}
		candidate.ID = nextID(ids)
		candidate.Version = 1

		doc.Products = append(doc.Products, candidate)
		*product = candidate

		r.store.logger.Debug().Str("product_id", candidate.ID).Msg("product created")
		return nil
	})
}

// Update replaces the product at its position when the version matches.
func (r *fileProductRepository) Update(ctx context.Context, product *model.Product) error {
	return r.store.mutate(ctx, func(doc *document) error {
		idx := -1
		for i := range doc.Products {
			if doc.Products[i].ID == product.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return model.ErrProductNotFound
		}
		if doc.Products[idx].Version != product.Version {
			r.store.logger.Warn().
				Str("product_id", product.ID).
				Int("stored_version", doc.Products[idx].Version).
				Int("expected_version", product.Version).
				Msg("stale product version")
			return model.ErrVersionConflict
		}
		if err := checkProductUnique(doc.Products, product); err != nil {
			return err
		}

		updated := *product
		updated.Version++
		doc.Products[idx] = updated
		*product = updated
		return nil
	})
}

// Delete splices the product out of the document.
func (r *fileProductRepository) Delete(ctx context.Context, id string) (*model.Product, error) {
	var removed *model.Product
	err := r.store.mutate(ctx, func(doc *document) error {
		for i := range doc.Products {
			if doc.Products[i].ID == id {
				p := doc.Products[i]
				removed = &p
				doc.Products = append(doc.Products[:i], doc.Products[i+1:]...)
				return nil
			}
		}
		return errNoChange
	})
	if err == errNoChange {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// fileCategoryRepository implements CategoryRepository on a FileStore.
type fileCategoryRepository struct {
	store *FileStore
}

// List retrieves every category in storage order.
func (r *fileCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.store.read(ctx, func(doc *document) {
		categories = append(make([]model.Category, 0, len(doc.Categories)), doc.Categories...)
	})
	return categories, err
}

// Create appends the category when its name is free.
func (r *fileCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.store.mutate(ctx, func(doc *document) error {
		ids := make([]string, len(doc.Categories))
		for i, c := range doc.Categories {
			if model.SameName(c.Name, category.Name) {
				return model.ErrDuplicateCategory
			}
			ids[i] = c.ID
		}

		created := model.Category{ID: nextID(ids), Name: category.Name}
		doc.Categories = append(doc.Categories, created)
		*category = created
		return nil
	})
}

// DeleteByName removes every matching category unless a product references it.
func (r *fileCategoryRepository) DeleteByName(ctx context.Context, name string) (int, error) {
	removed := 0
	err := r.store.mutate(ctx, func(doc *document) error {
		for _, p := range doc.Products {
			if model.SameName(p.Category, name) {
				return model.ErrCategoryInUse
			}
		}

		kept := doc.Categories[:0]
		for _, c := range doc.Categories {
			if model.SameName(c.Name, name) {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		if removed == 0 {
			return model.ErrCategoryNotFound
		}
		doc.Categories = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
