package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// DataLoadError means the catalog dataset is missing, unreadable or not a
// JSON array. Fatal for the request; never retried.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load products from %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Source supplies catalog entries. Load reads the dataset fresh each call;
// the catalog is deliberately not cached in memory so edits to the file
// show up on the next request.
type Source interface {
	Load(ctx context.Context) ([]Product, error)
	Ping(ctx context.Context) error
}

// FileSource reads a JSON array of products from disk.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Load(_ context.Context) ([]Product, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, &DataLoadError{Path: s.Path, Err: err}
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, &DataLoadError{Path: s.Path, Err: err}
	}

	return products, nil
}

func (s *FileSource) Ping(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}
