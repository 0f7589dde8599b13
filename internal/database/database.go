package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"inventory/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const applicationName = "inventory"

// Open applies pending migrations and returns a connected pool for the
// catalogue store.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	if err := Migrate(cfg, logger); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return NewPool(ctx, cfg, logger)
}

// NewPool creates a PostgreSQL connection pool and verifies it with a ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := PoolConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_connections", cfg.MaxConnections).
		Dur("statement_timeout", cfg.StatementTimeout).
		Dur("lock_timeout", cfg.LockTimeout).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection pool created successfully")

	return pool, nil
}

// PoolConfig builds the pool settings for cfg. Every connection is tagged
// with the application name and carries the configured statement and lock
// timeouts, so a row lock held by a stalled writer fails fast instead of
// hanging the request.
func PoolConfig(cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	params := poolConfig.ConnConfig.RuntimeParams
	params["application_name"] = applicationName
	if cfg.StatementTimeout > 0 {
		params["statement_timeout"] = millis(cfg.StatementTimeout)
	}
	if cfg.LockTimeout > 0 {
		params["lock_timeout"] = millis(cfg.LockTimeout)
	}

	connLogger := logger.With().Str("component", "pgxpool").Logger()
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		connLogger.Debug().Uint32("pid", conn.PgConn().PID()).Msg("database connection established")
		return nil
	}

	return poolConfig, nil
}

func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
