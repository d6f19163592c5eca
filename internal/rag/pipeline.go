// Package rag implements the retrieval-augmented answer pipeline: embed the
// question, retrieve the top_k passages, build a context block and generate
// an answer. Citations are derived from retrieval metadata, never from the
// generated text.
package rag

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"pdfqa/internal/domain"
	"pdfqa/internal/qaerrors"
)

// SystemPrompt instructs the model to answer only from the supplied context.
const SystemPrompt = `You are a helpful assistant.
Answer ONLY using the provided context.
If the context does not contain the answer, say exactly:
I don't know based on the provided document.
`

const userTemplate = "Context:\n%s\n\nQuestion: %s\n"

// snippetLimit bounds the excerpt length exposed per retrieved passage.
const snippetLimit = 240

// Result is the outcome of one answer call.
type Result struct {
	Answer      string                   `json:"answer"`
	Citations   string                   `json:"citations"`
	Sources     []domain.RetrievedSource `json:"sources"`
	Elapsed     time.Duration            `json:"elapsed"`
	SourcePages []int                    `json:"source_pages"`
}

// Pipeline wires the embedding, retrieval and generation capabilities.
// It performs no logging and writes nothing; persisting the outcome is the
// caller's responsibility.
type Pipeline struct {
	embedder  domain.Embedder
	store     domain.VectorStore
	generator domain.Generator
}

func New(embedder domain.Embedder, store domain.VectorStore, generator domain.Generator) *Pipeline {
	return &Pipeline{embedder: embedder, store: store, generator: generator}
}

// Answer retrieves the topK most relevant passages for question and
// generates an answer grounded in them. Elapsed covers the whole call,
// retrieval and generation included.
func (p *Pipeline) Answer(ctx context.Context, question string, topK int) (*Result, error) {
	if p.embedder == nil || p.store == nil || p.generator == nil {
		return nil, qaerrors.NewConfigurationError("answer pipeline is missing a capability")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("question is empty")
	}
	if topK < 1 {
		return nil, fmt.Errorf("top_k must be >= 1, got %d", topK)
	}

	start := time.Now()

	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return nil, qaerrors.NewRetrievalError(err)
	}
	results, err := p.store.Search(ctx, vector, topK)
	if err != nil {
		return nil, qaerrors.NewRetrievalError(err)
	}

	contextBlock := BuildContext(results)
	answer, err := p.generator.Generate(ctx, SystemPrompt, fmt.Sprintf(userTemplate, contextBlock, question))
	if err != nil {
		return nil, qaerrors.NewGenerationError(err)
	}

	return &Result{
		Answer:      strings.TrimSpace(answer),
		Citations:   CitationsLine(results),
		Sources:     FormatSources(results),
		Elapsed:     time.Since(start),
		SourcePages: SourcePages(results),
	}, nil
}

// BuildContext concatenates the retrieved passages, each prefixed with its
// index and 1-based page number, separated by blank lines. A passage without
// page metadata renders as "page ?".
func BuildContext(results []domain.SearchResult) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		page := "?"
		if r.Chunk.Page != nil {
			page = strconv.Itoa(*r.Chunk.Page + 1)
		}
		text := strings.TrimSpace(r.Chunk.Text)
		parts = append(parts, fmt.Sprintf("[source %d | page %s]\n%s", i+1, page, text))
	}
	return strings.Join(parts, "\n\n")
}

// CitationsLine renders the deduplicated, ascending 1-based page numbers of
// the retrieved passages. Passages without page metadata contribute nothing;
// with no pages at all the line is exactly "Citations: (none)".
func CitationsLine(results []domain.SearchResult) string {
	pages := SourcePages(results)
	if len(pages) == 0 {
		return "Citations: (none)"
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = "p." + strconv.Itoa(p)
	}
	return "Citations: " + strings.Join(parts, ", ")
}

// SourcePages returns the sorted unique 1-based page numbers backing the
// citations line.
func SourcePages(results []domain.SearchResult) []int {
	seen := make(map[int]struct{})
	var pages []int
	for _, r := range results {
		if r.Chunk.Page == nil {
			continue
		}
		p := *r.Chunk.Page + 1 // 0-based -> 1-based
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// FormatSources returns the caller-facing view of each retrieved passage.
// Snippets are single-line, at most snippetLimit runes plus an ellipsis
// marker when truncated. Page stays nil when the passage has none.
func FormatSources(results []domain.SearchResult) []domain.RetrievedSource {
	sources := make([]domain.RetrievedSource, 0, len(results))
	for _, r := range results {
		var page *int
		if r.Chunk.Page != nil {
			p := *r.Chunk.Page + 1
			page = &p
		}
		sources = append(sources, domain.RetrievedSource{
			Page:    page,
			Source:  r.Chunk.Source,
			Snippet: formatSnippet(r.Chunk.Text),
		})
	}
	return sources
}

func formatSnippet(text string) string {
	s := strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	runes := []rune(s)
	if len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return s
}
