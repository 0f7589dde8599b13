// Package seed loads a catalogue document and imports it through the
// product and category services.
package seed

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"inventory/internal/model"
)

// Catalogue has the same layout as the file store document.
type Catalogue struct {
	Products   []model.Product  `json:"products"`
	Categories []model.Category `json:"categories"`
}

// Loader defines the interface for loading a catalogue.
type Loader interface {
	// Load reads the catalogue stored under path.
	Load(ctx context.Context, path string) (*Catalogue, error)
}

// decode reads a catalogue, un-gzipping it when name ends in ".gz".
func decode(r io.Reader, name string) (*Catalogue, error) {
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gz.Close()
		r = gz
	}

	var c Catalogue
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode catalogue %s: %w", name, err)
	}
	return &c, nil
}
