package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory/internal/auth"
	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/handler"
	"inventory/internal/repository"
	"inventory/internal/router"
	"inventory/internal/seed"
	"inventory/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("store", cfg.Store.Backend).Msg("starting inventory API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize repositories for the configured backend
	productRepo, categoryRepo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)

	if cfg.Seed.Path != "" {
		if err := seedCatalogue(ctx, cfg.Seed, productService, categoryService, logger); err != nil {
			return err
		}
	}

	verifier, err := newVerifier(cfg.Auth, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize authentication: %w", err)
	}
	sessions := auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := router.Options{Registry: registry}
	if cfg.Auth.Enabled {
		opts.Sessions = sessions
	} else {
		logger.Warn().Msg("authentication disabled, API routes are public")
	}

	// Initialize router
	mux := router.New(router.Handlers{
		Products:   handler.NewProductHandler(productService, logger),
		Categories: handler.NewCategoryHandler(categoryService, logger),
		Auth:       handler.NewAuthHandler(verifier, sessions, logger),
	}, opts, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("address", server.Addr).Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown on signal or server failure
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openStore returns the repositories for cfg.Store.Backend and a function
// releasing their resources.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.ProductRepository, repository.CategoryRepository, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pool, err := database.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repository.NewProductRepository(pool, logger), repository.NewCategoryRepository(pool, logger), pool.Close, nil

	default:
		store, err := repository.OpenFileStore(cfg.Store.FilePath, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return store.Products(), store.Categories(), func() {}, nil
	}
}

// newVerifier builds the password verifier for the configured provider. With
// authentication disabled every login is refused.
func newVerifier(cfg config.AuthConfig, logger zerolog.Logger) (auth.PasswordVerifier, error) {
	if !cfg.Enabled {
		return auth.NewLocalVerifier(nil, logger), nil
	}

	switch cfg.Provider {
	case config.AuthProviderLocal:
		return auth.LoadLocalVerifier(cfg.UsersFile, logger)
	default:
		return auth.NewIdentityToolkitVerifier(auth.IdentityToolkitConfig{
			URL:    cfg.IdentityURL,
			APIKey: cfg.IdentityAPIKey,
		}, nil, logger), nil
	}
}

func seedCatalogue(ctx context.Context, cfg config.SeedConfig, products service.ProductService, categories service.CategoryService, logger zerolog.Logger) error {
	fileLoader := seed.NewFileLoader(logger)

	var s3Loader seed.Loader
	if cfg.S3Enabled {
		l, err := seed.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	}

	loader := seed.NewFallbackLoader(s3Loader, fileLoader, cfg.S3Prefix, cfg.S3Enabled, logger)
	catalogue, err := loader.Load(ctx, cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to load seed catalogue: %w", err)
	}

	if _, err := seed.NewImporter(products, categories, logger).Import(ctx, catalogue); err != nil {
		return fmt.Errorf("failed to import seed catalogue: %w", err)
	}
	return nil
}
