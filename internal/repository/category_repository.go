package repository

import (
	"context"
	"fmt"

	"inventory/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY seq`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var (
			c  model.Category
			id uuid.UUID
		)
		if err := rows.Scan(&id, &c.Name); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ID = id.String()
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	key := uuid.New()

	_, err := r.pool.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, key, category.Name)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		r.logger.Error().Err(err).Str("category", category.Name).Msg("failed to insert category")
		return fmt.Errorf("failed to insert category: %w", err)
	}

	category.ID = key.String()
	return nil
}

// deleteAttempts bounds how often a category delete is re-run after losing a
// serialization race.
const deleteAttempts = 2

// DeleteByName runs the reference check and the delete in one serializable
// transaction so a product cannot start using the category in between. A
// transaction that loses a race is re-run once before ErrCategoryConflict.
func (r *categoryRepository) DeleteByName(ctx context.Context, name string) (int, error) {
	for attempt := 1; ; attempt++ {
		removed, err := r.deleteByName(ctx, name)
		if err == nil || !isTxConflict(err) {
			return removed, err
		}
		if attempt == deleteAttempts {
			r.logger.Warn().Err(err).Str("category", name).Msg("category delete kept conflicting")
			return 0, model.ErrCategoryConflict
		}
		r.logger.Debug().Err(err).Str("category", name).Int("attempt", attempt).Msg("category delete conflicted, retrying")
	}
}

func (r *categoryRepository) deleteByName(ctx context.Context, name string) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var inUse bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE lower(btrim(category)) = lower(btrim($1)))`,
		name,
	).Scan(&inUse)
	if err != nil {
		if isTxConflict(err) {
			return 0, err
		}
		r.logger.Error().Err(err).Str("category", name).Msg("failed to check category usage")
		return 0, fmt.Errorf("failed to check category usage: %w", err)
	}
	if inUse {
		return 0, model.ErrCategoryInUse
	}

	tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE lower(btrim(name)) = lower(btrim($1))`, name)
	if err != nil {
		if isTxConflict(err) {
			return 0, err
		}
		r.logger.Error().Err(err).Str("category", name).Msg("failed to delete category")
		return 0, fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, model.ErrCategoryNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit category delete: %w", err)
	}

	r.logger.Info().Str("category", name).Int64("removed", tag.RowsAffected()).Msg("category deleted")
	return int(tag.RowsAffected()), nil
}
