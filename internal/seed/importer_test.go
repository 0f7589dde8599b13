package seed

import (
	"context"
	"path/filepath"
	"testing"

	"inventory/internal/model"
	"inventory/internal/repository"
	"inventory/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T) (service.ProductService, service.CategoryService) {
	t.Helper()
	store, err := repository.OpenFileStore(filepath.Join(t.TempDir(), "inventory.json"), zerolog.Nop())
	require.NoError(t, err)
	return service.NewProductService(store.Products(), zerolog.Nop()), service.NewCategoryService(store.Categories(), zerolog.Nop())
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	products, categories := newServices(t)
	importer := NewImporter(products, categories, zerolog.Nop())

	c := &Catalogue{
		Categories: []model.Category{{Name: "Tools"}, {Name: "tools"}},
		Products: []model.Product{
			{Name: "Widget", CodIdentification: "W1", Stock: 5, Price: 1000, Category: "Tools"},
			{Name: "Widget", CodIdentification: "W2", Stock: 1, Price: 10},
			{Name: "", CodIdentification: "X1", Stock: 1, Price: 10},
			{Name: "Gadget", CodIdentification: "G1", Stock: 0, Price: 250},
		},
	}

	res, err := importer.Import(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 3, Skipped: 3}, res)

	list, err := products.List(ctx, model.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Widget", list[0].Name)
	assert.Equal(t, "Tools", list[0].Category)
	assert.Equal(t, "Gadget", list[1].Name)

	// A second run creates nothing.
	res, err = importer.Import(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 6, res.Skipped)
}

func TestImporter_NilCatalogue(t *testing.T) {
	products, categories := newServices(t)

	res, err := NewImporter(products, categories, zerolog.Nop()).Import(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}
