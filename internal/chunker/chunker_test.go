package chunker

import (
	"strings"
	"testing"

	"pdfqa/internal/domain"
)

func TestCharacterChunkerBoundsAndOverlap(t *testing.T) {
	page := 3
	doc := domain.Document{
		ID:      "doc.pdf:3",
		Content: strings.Repeat("lorem ipsum dolor sit amet ", 100),
		Page:    &page,
		Source:  "doc.pdf",
	}
	c := NewCharacterChunker(200, 40)
	chunks, err := c.Chunk(doc)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len([]rune(ch.Text)) > 200 {
			t.Errorf("chunk %d exceeds size: %d runes", i, len([]rune(ch.Text)))
		}
		if ch.Index != i {
			t.Errorf("chunk %d has index %d", i, ch.Index)
		}
		if ch.Page == nil || *ch.Page != 3 {
			t.Errorf("chunk %d lost page metadata", i)
		}
		if ch.Source != "doc.pdf" {
			t.Errorf("chunk %d lost source metadata", i)
		}
	}
	// Consecutive chunks must share text because of the overlap.
	tail := chunks[0].Text[len(chunks[0].Text)-20:]
	if !strings.Contains(chunks[1].Text, strings.TrimSpace(tail)) {
		t.Errorf("no overlap between chunk 0 and 1")
	}
}

func TestCharacterChunkerEmptyDocument(t *testing.T) {
	c := NewCharacterChunker(800, 120)
	chunks, err := c.Chunk(domain.Document{ID: "x", Content: "   \n  "})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if chunks != nil {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestCharacterChunkerShortDocumentSingleChunk(t *testing.T) {
	c := NewCharacterChunker(800, 120)
	chunks, err := c.Chunk(domain.Document{ID: "x", Content: "short text"})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "short text" {
		t.Fatalf("unexpected chunks: %+v", chunks)
	}
}

func TestSentenceChunkerCarriesMetadata(t *testing.T) {
	page := 0
	doc := domain.Document{
		ID:      "a.pdf:0",
		Content: "One. Two. Three. Four. Five. Six. Seven.",
		Page:    &page,
		Source:  "a.pdf",
	}
	c := NewSentenceChunker(3, 1)
	chunks, err := c.Chunk(doc)
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected overlapping chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "One. Two. Three." {
		t.Errorf("unexpected first chunk: %q", chunks[0].Text)
	}
	for _, ch := range chunks {
		if ch.Page == nil || *ch.Page != 0 || ch.Source != "a.pdf" {
			t.Errorf("chunk %s lost metadata", ch.ChunkID)
		}
	}
}
