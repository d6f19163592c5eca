// Package ingest builds the retrieval index: chunk the loaded documents,
// fit/run the embedder and upsert everything into the vector store.
package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"pdfqa/internal/domain"
	"pdfqa/internal/qaerrors"
)

// Ingestor wires the components of the indexing flow.
type Ingestor struct {
	Chunker             domain.Chunker
	Embedder            domain.Embedder
	Store               domain.VectorStore
	Summarizer          domain.Summarizer
	SummaryMaxSentences int
}

// Stats reports what an ingest run produced.
type Stats struct {
	Documents int
	Chunks    int
	Dimension int
	Summary   string
	Elapsed   time.Duration
}

// Ingest chunks the documents, prepares the embedder over the chunk corpus,
// embeds every chunk and replaces the store contents.
func (in *Ingestor) Ingest(ctx context.Context, docs []domain.Document) (*Stats, error) {
	if len(docs) == 0 {
		return nil, errors.New("no documents to ingest")
	}
	start := time.Now()

	var chunks []domain.Chunk
	var corpus []string
	var fullText strings.Builder
	for _, d := range docs {
		cs, err := in.Chunker.Chunk(d)
		if err != nil {
			return nil, err
		}
		for _, ch := range cs {
			chunks = append(chunks, ch)
			corpus = append(corpus, ch.Text)
		}
		fullText.WriteString("\n")
		fullText.WriteString(d.Content)
	}
	if len(chunks) == 0 {
		return nil, errors.New("documents produced no chunks")
	}

	if err := in.Embedder.Prepare(corpus); err != nil {
		return nil, qaerrors.NewRetrievalError(err)
	}
	vectors := make([][]float64, len(chunks))
	for i := range chunks {
		vec, err := in.Embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return nil, qaerrors.NewRetrievalError(err)
		}
		vectors[i] = vec
	}
	// Remote embedders only learn their dimension on the first embed, so the
	// store is initialized after embedding, not before.
	dimension := in.Embedder.Dimension()
	if dimension == 0 && len(vectors) > 0 {
		dimension = len(vectors[0])
	}
	if err := in.Store.Init(dimension); err != nil {
		return nil, err
	}
	if err := in.Store.Clear(); err != nil {
		return nil, err
	}
	if err := in.Store.Upsert(chunks, vectors); err != nil {
		return nil, err
	}

	stats := &Stats{
		Documents: len(docs),
		Chunks:    len(chunks),
		Dimension: dimension,
		Elapsed:   time.Since(start),
	}
	if in.Summarizer != nil {
		summary, err := in.Summarizer.Summarize(fullText.String(), in.SummaryMaxSentences)
		if err != nil {
			return nil, err
		}
		stats.Summary = summary
	}
	return stats, nil
}
