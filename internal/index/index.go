// Package index persists the built retrieval index as a JSON file so the
// ask, run and ui commands can work in a different process from ingest.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pdfqa/internal/domain"
	"pdfqa/internal/embedding/tfidf"
)

// File is the on-disk representation of a built index.
type File struct {
	Embedder  string         `json:"embedder"`
	Dimension int            `json:"dimension"`
	Summary   string         `json:"summary,omitempty"`
	Chunks    []domain.Chunk `json:"chunks"`
	Vectors   [][]float64    `json:"vectors"`
	TFIDF     *tfidf.State   `json:"tfidf,omitempty"`
}

// Save writes the index file, creating parent directories as needed.
func Save(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads an index file written by Save.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	if f.Dimension <= 0 || len(f.Chunks) != len(f.Vectors) {
		return nil, fmt.Errorf("index %s is corrupt", path)
	}
	return &f, nil
}
