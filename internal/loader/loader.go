// Package loader reads source files into documents. PDF files yield one
// document per page with a 0-based page index; plain-text files yield a
// single document without page metadata.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdfqa/internal/domain"
)

// Load reads the file at path and returns its documents.
func Load(path string) ([]domain.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path)
	case ".txt", ".md":
		return loadText(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

func loadPDF(path string) ([]domain.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	source := filepath.Base(path)
	var docs []domain.Document
	total := r.NumPage()
	for num := 1; num <= total; num++ {
		p := r.Page(num)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d of %s: %w", num, path, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		page := num - 1 // 0-based, matching the retrieval metadata contract
		docs = append(docs, domain.Document{
			ID:      source + ":" + strconv.Itoa(page),
			Path:    path,
			Content: text,
			Page:    &page,
			Source:  source,
		})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return docs, nil
}

func loadText(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	source := filepath.Base(path)
	return []domain.Document{{
		ID:      source,
		Path:    path,
		Content: string(data),
		Source:  source,
	}}, nil
}
