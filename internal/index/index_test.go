package index

import (
	"path/filepath"
	"testing"

	"pdfqa/internal/domain"
	"pdfqa/internal/embedding/tfidf"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	page := 2
	f := &File{
		Embedder:  "tfidf",
		Dimension: 2,
		Summary:   "A short overview of the document.",
		Chunks: []domain.Chunk{
			{DocumentID: "a.pdf:2", ChunkID: "a.pdf:2:0", Text: "hello world", Index: 0, Page: &page, Source: "a.pdf"},
		},
		Vectors: [][]float64{{0.6, 0.8}},
		TFIDF:   &tfidf.State{Terms: []string{"hello", "world"}, IDF: []float64{1, 1}},
	}
	path := filepath.Join(t.TempDir(), "sub", "index.json")
	if err := Save(path, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Embedder != "tfidf" || got.Dimension != 2 {
		t.Fatalf("header mismatch: %+v", got)
	}
	if got.Summary != "A short overview of the document." {
		t.Fatalf("summary lost: %q", got.Summary)
	}
	if len(got.Chunks) != 1 || got.Chunks[0].Text != "hello world" {
		t.Fatalf("chunks mismatch: %+v", got.Chunks)
	}
	if got.Chunks[0].Page == nil || *got.Chunks[0].Page != 2 {
		t.Fatalf("page lost: %+v", got.Chunks[0])
	}
	if got.Vectors[0][1] != 0.8 {
		t.Fatalf("vectors mismatch: %+v", got.Vectors)
	}
	if got.TFIDF == nil || len(got.TFIDF.Terms) != 2 {
		t.Fatalf("tfidf state lost: %+v", got.TFIDF)
	}
}

func TestLoadRejectsCorruptIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	f := &File{Embedder: "tfidf", Dimension: 0}
	if err := Save(path, f); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected corrupt-index error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
