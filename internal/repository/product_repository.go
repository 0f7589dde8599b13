package repository

import (
	"context"
	"errors"
	"fmt"

	"inventory/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
	lockNotAvailable     = "55P03"
)

const productColumns = `id, name, cod_identification, description, stock, price, category, image_url, created_at, updated_at, version`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p     model.Product
		id    uuid.UUID
		price int64
	)
	err := row.Scan(&id, &p.Name, &p.CodIdentification, &p.Description, &p.Stock, &price,
		&p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt, &p.Version)
	if err != nil {
		return nil, err
	}
	p.ID = id.String()
	p.Price = model.Price(price)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// List retrieves every product in insertion order.
func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY seq`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		r.logger.Debug().Str("product_id", id).Msg("product id is not a uuid")
		return nil, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// Create inserts the product under a fresh UUID.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	key := uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := checkUnique(ctx, tx, uuid.Nil, product); err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, name, cod_identification, description, stock, price, category, image_url, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
	`
	_, err = tx.Exec(ctx, query, key, product.Name, product.CodIdentification, product.Description,
		product.Stock, int64(product.Price), product.Category, product.ImageURL, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		r.logger.Error().Err(err).Str("code", product.CodIdentification).Msg("failed to insert product")
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to commit product insert: %w", err)
	}

	product.ID = key.String()
	product.Version = 1
	return nil
}

// Update writes the product when its stored version still matches.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	key, err := uuid.Parse(product.ID)
	if err != nil {
		return model.ErrProductNotFound
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var stored int
	err = tx.QueryRow(ctx, `SELECT version FROM products WHERE id = $1 FOR UPDATE`, key).Scan(&stored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrProductNotFound
		}
		if isTxConflict(err) {
			r.logger.Warn().Err(err).Str("product_id", product.ID).Msg("product row is locked by another writer")
			return model.ErrVersionConflict
		}
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to lock product")
		return fmt.Errorf("failed to lock product: %w", err)
	}
	if stored != product.Version {
		r.logger.Warn().
			Str("product_id", product.ID).
			Int("stored_version", stored).
			Int("expected_version", product.Version).
			Msg("stale product version")
		return model.ErrVersionConflict
	}

	if err := checkUnique(ctx, tx, key, product); err != nil {
		return err
	}

	query := `
		UPDATE products
		SET name = $2, cod_identification = $3, description = $4, stock = $5, price = $6,
			category = $7, image_url = $8, updated_at = $9, version = version + 1
		WHERE id = $1
		RETURNING version
	`
	var version int
	err = tx.QueryRow(ctx, query, key, product.Name, product.CodIdentification, product.Description,
		product.Stock, int64(product.Price), product.Category, product.ImageURL, product.UpdatedAt).Scan(&version)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit product update: %w", err)
	}

	product.Version = version
	return nil
}

// Delete removes the product and returns the removed row.
func (r *productRepository) Delete(ctx context.Context, id string) (*model.Product, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns

	p, err := scanProduct(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found for delete")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return p, nil
}

// checkUnique reports a code collision before a name collision, ignoring the
// row identified by self.
func checkUnique(ctx context.Context, tx pgx.Tx, self uuid.UUID, p *model.Product) error {
	query := `
		SELECT
			EXISTS (SELECT 1 FROM products WHERE id <> $1 AND btrim(cod_identification) = btrim($2)),
			EXISTS (SELECT 1 FROM products WHERE id <> $1 AND lower(btrim(name)) = lower(btrim($3)))
	`
	var codeTaken, nameTaken bool
	if err := tx.QueryRow(ctx, query, self, p.CodIdentification, p.Name).Scan(&codeTaken, &nameTaken); err != nil {
		return fmt.Errorf("failed to check product uniqueness: %w", err)
	}
	switch {
	case codeTaken:
		return model.ErrDuplicateCode
	case nameTaken:
		return model.ErrDuplicateName
	}
	return nil
}

// mapUniqueViolation translates a 23505 error into the matching domain error.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case "products_cod_identification_key":
		return model.ErrDuplicateCode
	case "products_name_key":
		return model.ErrDuplicateName
	case "categories_name_key":
		return model.ErrDuplicateCategory
	}
	return nil
}

// isTxConflict reports whether err means the transaction lost a race with
// another one and may succeed if run again.
func isTxConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case serializationFailure, deadlockDetected, lockNotAvailable:
		return true
	}
	return false
}
