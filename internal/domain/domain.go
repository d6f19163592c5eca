package domain

import "context"

// Document represents one unit of source text loaded into the system.
// PDF loading produces one Document per page; plain-text files produce a
// single Document without page metadata.
type Document struct {
	ID      string
	Path    string
	Content string
	Page    *int // 0-based page index; nil when the source has no pages
	Source  string
}

// Chunk is a part of a document used for indexing. Page and Source are
// carried from the originating document so citations can be derived at
// answer time without re-reading the source.
type Chunk struct {
	DocumentID string `json:"document_id"`
	ChunkID    string `json:"chunk_id"`
	Text       string `json:"text"`
	Index      int    `json:"index"`
	Page       *int   `json:"page,omitempty"` // 0-based
	Source     string `json:"source,omitempty"`
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// RetrievedSource is the caller-facing view of one retrieved passage.
// Page is 1-based; nil means the passage had no page metadata.
type RetrievedSource struct {
	Page    *int   `json:"page"`
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear() error
}

// Generator produces text from a system instruction and a user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
