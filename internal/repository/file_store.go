package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"inventory/internal/model"

	"github.com/rs/zerolog"
)

// errNoChange aborts a mutation without rewriting the file.
var errNoChange = errors.New("no change")

// document is the on-disk layout of the file store.
type document struct {
	Products   []model.Product  `json:"products"`
	Categories []model.Category `json:"categories"`
}

func (d document) clone() document {
	return document{
		Products:   append([]model.Product(nil), d.Products...),
		Categories: append([]model.Category(nil), d.Categories...),
	}
}

// FileStore keeps products and categories in a single JSON document.
//
// All access is serialised by one mutex, and every mutation rewrites the whole
// file through a temp file and rename. Reads are served from memory.
type FileStore struct {
	path   string
	mu     sync.Mutex
	doc    document
	logger zerolog.Logger
}

// OpenFileStore loads the document at path. A missing or empty file yields an
// empty store; the file is created on the first write.
func OpenFileStore(path string, logger zerolog.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger.With().Str("repository", "file").Str("path", path).Logger(),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.logger.Info().Msg("store file not found, starting empty")
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("failed to decode store file %s: %w", path, err)
		}
	}

	s.logger.Info().
		Int("products", len(s.doc.Products)).
		Int("categories", len(s.doc.Categories)).
		Msg("store file loaded")

	return s, nil
}

// Products returns the product view of the store.
func (s *FileStore) Products() ProductRepository {
	return &fileProductRepository{store: s}
}

// Categories returns the category view of the store.
func (s *FileStore) Categories() CategoryRepository {
	return &fileCategoryRepository{store: s}
}

// read runs fn against the current document under the lock.
func (s *FileStore) read(ctx context.Context, fn func(doc *document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.doc)
	return nil
}

// mutate applies fn to a copy of the document, persists the copy and only then
// makes it current. A failed fn or write leaves the store untouched.
func (s *FileStore) mutate(ctx context.Context, fn func(doc *document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist store file")
		return err
	}
	s.doc = next
	return nil
}

func (s *FileStore) write(doc document) error {
	if doc.Products == nil {
		doc.Products = []model.Product{}
	}
	if doc.Categories == nil {
		doc.Categories = []model.Category{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close store file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// nextID returns max(existing integer keys)+1. Non-numeric keys are ignored.
func nextID(ids []string) string {
	var highest int64
	for _, id := range ids {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.FormatInt(highest+1, 10)
}

func checkProductUnique(products []model.Product, p *model.Product) error {
	for _, existing := range products {
		if existing.ID != p.ID && model.SameCode(existing.CodIdentification, p.CodIdentification) {
			return model.ErrDuplicateCode
		}
	}
	for _, existing := range products {
		if existing.ID != p.ID && model.SameName(existing.Name, p.Name) {
			return model.ErrDuplicateName
		}
	}
	return nil
}
