//go:build ignore

// generate_sample_catalogue writes a gzipped seed catalogue for local runs:
//
//	go run scripts/generate_sample_catalogue.go
//	SEED_PATH=data/seed/catalogue.json.gz go run ./cmd/api
package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"inventory/internal/model"
	"inventory/internal/seed"
)

func main() {
	dataDir := "data/seed"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	categories := []string{"Tools", "Garden", "Kitchen"}

	catalogue := seed.Catalogue{}
	for _, name := range categories {
		catalogue.Categories = append(catalogue.Categories, model.Category{Name: name})
	}

	for i := 1; i <= 30; i++ {
		category := categories[i%len(categories)]
		catalogue.Products = append(catalogue.Products, model.Product{
			Name:              fmt.Sprintf("%s item %02d", category, i),
			CodIdentification: fmt.Sprintf("%c%03d", category[0], i),
			Description:       fmt.Sprintf("Sample %s product", category),
			Stock:             (i * 7) % 50,
			Price:             model.Price(199 + i*150),
			Category:          category,
		})
	}

	path := filepath.Join(dataDir, "catalogue.json.gz")
	file, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", path, err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(catalogue); err != nil {
		log.Fatalf("Failed to write catalogue: %v", err)
	}
	if err := gz.Close(); err != nil {
		log.Fatalf("Failed to flush %s: %v", path, err)
	}

	fmt.Printf("Created %s with %d products and %d categories\n", path, len(catalogue.Products), len(catalogue.Categories))
}
