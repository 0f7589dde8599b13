package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
)

// Password verification providers.
const (
	AuthProviderIdentityToolkit = "identitytoolkit"
	AuthProviderLocal           = "local"
)

// DefaultIdentityURL is the password sign-in endpoint of the hosted identity service.
const DefaultIdentityURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Seed     SeedConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// StoreConfig selects where products and categories live.
type StoreConfig struct {
	Backend  string
	FilePath string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds

	// StatementTimeout and LockTimeout bound every statement and row lock
	// wait on a pooled connection. Zero leaves the server default.
	StatementTimeout time.Duration
	LockTimeout      time.Duration
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Enabled        bool
	SessionSecret  string
	SessionTTL     time.Duration
	Provider       string
	IdentityURL    string
	IdentityAPIKey string
	UsersFile      string
}

// SeedConfig describes the optional catalogue import run at startup.
type SeedConfig struct {
	Path      string
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Prefix  string // Path prefix within bucket (e.g., "catalogue/")
}

// Load loads configuration from environment variables. Values in a .env file
// (or the file named by ENV_FILE) fill in variables that are not already set.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Backend:  getEnv("STORE_BACKEND", StoreBackendFile),
			FilePath: getEnv("STORE_FILE_PATH", "data/inventory.json"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "inventory"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),

			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 5*time.Second),
			LockTimeout:      getEnvAsDuration("DB_LOCK_TIMEOUT", 2*time.Second),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			Enabled:        getEnvAsBool("AUTH_ENABLED", false),
			SessionSecret:  getEnv("AUTH_SESSION_SECRET", ""),
			SessionTTL:     getEnvAsDuration("AUTH_SESSION_TTL", 24*time.Hour),
			Provider:       getEnv("AUTH_PROVIDER", AuthProviderIdentityToolkit),
			IdentityURL:    getEnv("AUTH_IDENTITY_URL", DefaultIdentityURL),
			IdentityAPIKey: getEnv("AUTH_IDENTITY_API_KEY", ""),
			UsersFile:      getEnv("AUTH_USERS_FILE", ""),
		},
		Seed: SeedConfig{
			Path:      getEnv("SEED_PATH", ""),
			S3Enabled: getEnvAsBool("SEED_S3_ENABLED", false),
			S3Bucket:  getEnv("SEED_S3_BUCKET", ""),
			S3Region:  getEnv("SEED_S3_REGION", "us-east-1"),
			S3Prefix:  getEnv("SEED_S3_PREFIX", "catalogue/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Store.Backend {
	case StoreBackendFile:
		if c.Store.FilePath == "" {
			return fmt.Errorf("store file path is required for the file backend")
		}
	case StoreBackendPostgres:
		if err := c.Database.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be file or postgres)", c.Store.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Auth.Enabled {
		if len(c.Auth.SessionSecret) < 32 {
			return fmt.Errorf("auth session secret must be at least 32 characters")
		}
		if c.Auth.SessionTTL <= 0 {
			return fmt.Errorf("auth session TTL must be positive")
		}
		switch c.Auth.Provider {
		case AuthProviderIdentityToolkit:
			if c.Auth.IdentityAPIKey == "" {
				return fmt.Errorf("identity API key is required for the identitytoolkit provider")
			}
		case AuthProviderLocal:
			if c.Auth.UsersFile == "" {
				return fmt.Errorf("users file is required for the local provider")
			}
		default:
			return fmt.Errorf("invalid auth provider: %s (must be identitytoolkit or local)", c.Auth.Provider)
		}
	}

	if c.Seed.S3Enabled {
		if c.Seed.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 seeding is enabled")
		}
		if c.Seed.S3Region == "" {
			return fmt.Errorf("S3 region is required when S3 seeding is enabled")
		}
	}

	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.StatementTimeout < 0 || c.LockTimeout < 0 {
		return fmt.Errorf("database timeouts cannot be negative")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration parses values such as "30s" or "24h".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
