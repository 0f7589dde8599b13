package integration

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"inventory/internal/auth"
	"inventory/internal/database"
	"inventory/internal/handler"
	"inventory/internal/model"
	"inventory/internal/repository"
	"inventory/internal/router"
	"inventory/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testSecret   = "integration-session-secret-0123456789"
	testEmail    = "ops@example.com"
	testPassword = "correct horse battery staple"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a migrated PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.MigrateURL(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedProducts inserts test product data into the database in a known order.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) []string {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		name     string
		code     string
		stock    int
		price    model.Price
		category string
	}{
		{"Test Product 1", "P001", 10, 1000, "Category A"},
		{"Test Product 2", "P002", 0, 2000, "Category B"},
		{"Test Product 3", "P003", 30, 3000, "Category A"},
		{"Test Product 4", "P004", 4, 4000, "Category C"},
		{"Test Product 5", "P005", 50, 5000, "Category B"},
	}

	now := time.Now().UTC()
	ids := make([]string, 0, len(products))
	for _, p := range products {
		id := uuid.New()
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, cod_identification, stock, price, category, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
			id, p.name, p.code, p.stock, int64(p.price), p.category, now,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.code, err)
		}
		ids = append(ids, id.String())
	}
	return ids
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "TRUNCATE products, categories"); err != nil {
		t.Logf("failed to clean tables: %v", err)
	}
}

// newServer wires the full HTTP stack over the given repositories with
// authentication enabled and one local user.
func newServer(t *testing.T, products repository.ProductRepository, categories repository.CategoryRepository) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	hash, err := auth.HashPassword(testPassword)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	verifier := auth.NewLocalVerifier([]auth.LocalUser{{ID: "user-1", Email: testEmail, PasswordHash: hash}}, logger)
	sessions := auth.NewSessionManager(testSecret, time.Hour)

	return router.New(router.Handlers{
		Products:   handler.NewProductHandler(service.NewProductService(products, logger), logger),
		Categories: handler.NewCategoryHandler(service.NewCategoryService(categories, logger), logger),
		Auth:       handler.NewAuthHandler(verifier, sessions, logger),
	}, router.Options{Sessions: sessions, Registry: prometheus.NewRegistry()}, logger)
}

// newFileServer is newServer over a fresh file store.
func newFileServer(t *testing.T) http.Handler {
	t.Helper()

	store, err := repository.OpenFileStore(filepath.Join(t.TempDir(), "inventory.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open file store: %v", err)
	}
	return newServer(t, store.Products(), store.Categories())
}
