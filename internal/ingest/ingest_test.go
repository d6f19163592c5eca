package ingest

import (
	"context"
	"testing"

	"pdfqa/internal/chunker"
	"pdfqa/internal/domain"
	"pdfqa/internal/embedding/tfidf"
	"pdfqa/internal/summarizer"
	"pdfqa/internal/vectorstore/memory"
)

func intPtr(v int) *int { return &v }

func TestIngestBuildsSearchableIndex(t *testing.T) {
	store := memory.NewStorage()
	emb := tfidf.NewEmbedder()
	in := &Ingestor{
		Chunker:             chunker.NewSentenceChunker(2, 0),
		Embedder:            emb,
		Store:               store,
		Summarizer:          summarizer.NewFrequencySummarizer(),
		SummaryMaxSentences: 2,
	}

	docs := []domain.Document{
		{ID: "d.pdf:0", Content: "The project deadline is March first. Extensions require committee approval.", Page: intPtr(0), Source: "d.pdf"},
		{ID: "d.pdf:1", Content: "Budget reports are due quarterly. Late reports are escalated.", Page: intPtr(1), Source: "d.pdf"},
	}
	stats, err := in.Ingest(context.Background(), docs)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if stats.Documents != 2 || stats.Chunks == 0 || stats.Dimension == 0 {
		t.Fatalf("stats: %+v", stats)
	}
	if stats.Summary == "" {
		t.Error("missing summary")
	}
	if store.Len() != stats.Chunks {
		t.Fatalf("store holds %d chunks, stats say %d", store.Len(), stats.Chunks)
	}

	vec, err := emb.Embed(context.Background(), "When is the project deadline?")
	if err != nil {
		t.Fatalf("embed query: %v", err)
	}
	res, err := store.Search(context.Background(), vec, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("expected one result, got %d", len(res))
	}
	if res[0].Chunk.Page == nil || *res[0].Chunk.Page != 0 {
		t.Errorf("best match should come from page 0: %+v", res[0].Chunk)
	}
}

func TestIngestRejectsEmptyInput(t *testing.T) {
	in := &Ingestor{
		Chunker:  chunker.NewCharacterChunker(800, 120),
		Embedder: tfidf.NewEmbedder(),
		Store:    memory.NewStorage(),
	}
	if _, err := in.Ingest(context.Background(), nil); err == nil {
		t.Fatal("expected error for no documents")
	}
	if _, err := in.Ingest(context.Background(), []domain.Document{{ID: "x", Content: "   "}}); err == nil {
		t.Fatal("expected error for empty content")
	}
}
