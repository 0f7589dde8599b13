package seed

import (
	"context"
	"fmt"

	"inventory/internal/model"
	"inventory/internal/service"

	"github.com/rs/zerolog"
)

// Result counts what an import did.
type Result struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Importer writes a catalogue through the services so every record passes
// the same validation and uniqueness rules as an API call.
type Importer struct {
	products   service.ProductService
	categories service.CategoryService
	logger     zerolog.Logger
}

// NewImporter creates an Importer.
func NewImporter(products service.ProductService, categories service.CategoryService, logger zerolog.Logger) *Importer {
	return &Importer{
		products:   products,
		categories: categories,
		logger:     logger.With().Str("component", "seed-importer").Logger(),
	}
}

// Import creates categories and then products. Records rejected as duplicates
// or invalid are skipped; any other error aborts the import.
func (i *Importer) Import(ctx context.Context, c *Catalogue) (Result, error) {
	var res Result
	if c == nil {
		return res, nil
	}

	for _, category := range c.Categories {
		if _, err := i.categories.Create(ctx, category.Name); err != nil {
			if !skippable(err) {
				return res, fmt.Errorf("failed to import category %q: %w", category.Name, err)
			}
			i.logger.Debug().Err(err).Str("category", category.Name).Msg("category skipped")
			res.Skipped++
			continue
		}
		res.Created++
	}

	for _, p := range c.Products {
		stock, price := p.Stock, p.Price
		input := model.ProductInput{
			Name:              p.Name,
			CodIdentification: p.CodIdentification,
			Description:       p.Description,
			Stock:             &stock,
			Price:             &price,
			Category:          p.Category,
			ImageURL:          p.ImageURL,
		}
		if _, err := i.products.Create(ctx, input); err != nil {
			if !skippable(err) {
				return res, fmt.Errorf("failed to import product %q: %w", p.Name, err)
			}
			i.logger.Debug().Err(err).Str("product", p.Name).Msg("product skipped")
			res.Skipped++
			continue
		}
		res.Created++
	}

	i.logger.Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("catalogue imported")
	return res, nil
}

func skippable(err error) bool {
	kind, ok := model.KindOf(err)
	return ok && (kind == model.KindDuplicate || kind == model.KindValidation)
}
