package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for catalogue files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalogue loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalogue-loader").Logger(),
	}
}

// Load reads a JSON catalogue, gzipped when the name ends in ".gz".
func (l *fileLoader) Load(ctx context.Context, filePath string) (*Catalogue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Info().Str("file", filePath).Msg("loading catalogue file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open catalogue file")
		return nil, fmt.Errorf("failed to open catalogue file %s: %w", filePath, err)
	}
	defer file.Close()

	catalogue, err := decode(file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read catalogue file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("products", len(catalogue.Products)).
		Int("categories", len(catalogue.Categories)).
		Msg("catalogue file loaded")

	return catalogue, nil
}
