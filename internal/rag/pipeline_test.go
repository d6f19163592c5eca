package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pdfqa/internal/domain"
	"pdfqa/internal/qaerrors"
)

func intPtr(v int) *int { return &v }

func resultsWithPages(pages ...*int) []domain.SearchResult {
	out := make([]domain.SearchResult, len(pages))
	for i, p := range pages {
		out[i] = domain.SearchResult{Chunk: domain.Chunk{Text: "text", Page: p, Source: "doc.pdf"}}
	}
	return out
}

func TestCitationsLine(t *testing.T) {
	tests := []struct {
		name    string
		results []domain.SearchResult
		want    string
	}{
		{"no results", nil, "Citations: (none)"},
		{"no pages", resultsWithPages(nil, nil), "Citations: (none)"},
		{"dedup and sort", resultsWithPages(intPtr(4), intPtr(0), intPtr(4), intPtr(2)), "Citations: p.1, p.3, p.5"},
		{"mixed nil", resultsWithPages(nil, intPtr(1)), "Citations: p.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CitationsLine(tt.results); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSourcePagesAreOneBasedUniqueSorted(t *testing.T) {
	pages := SourcePages(resultsWithPages(intPtr(3), intPtr(0), intPtr(3)))
	if len(pages) != 2 || pages[0] != 1 || pages[1] != 4 {
		t.Fatalf("unexpected pages: %v", pages)
	}
}

func TestFormatSnippetTruncation(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := formatSnippet(long)
	if len([]rune(got)) != 243 {
		t.Errorf("truncated length %d, want 243", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis marker: %q", got[len(got)-10:])
	}

	short := "  line one\nline two  "
	if got := formatSnippet(short); got != "line one line two" {
		t.Errorf("short snippet altered: %q", got)
	}

	exact := strings.Repeat("b", 240)
	if got := formatSnippet(exact); got != exact {
		t.Errorf("240-rune snippet must pass unchanged")
	}
}

func TestFormatSourcesKeepsAbsentPage(t *testing.T) {
	sources := FormatSources(resultsWithPages(nil, intPtr(0)))
	if sources[0].Page != nil {
		t.Errorf("expected nil page, got %d", *sources[0].Page)
	}
	if sources[1].Page == nil || *sources[1].Page != 1 {
		t.Errorf("expected page 1, got %v", sources[1].Page)
	}
}

func TestBuildContext(t *testing.T) {
	results := []domain.SearchResult{
		{Chunk: domain.Chunk{Text: " first passage ", Page: intPtr(0)}},
		{Chunk: domain.Chunk{Text: "second passage"}},
	}
	got := BuildContext(results)
	want := "[source 1 | page 1]\nfirst passage\n\n[source 2 | page ?]\nsecond passage"
	if got != want {
		t.Errorf("context block:\n%q\nwant:\n%q", got, want)
	}
}

// fakes

type fakeEmbedder struct{ err error }

func (f *fakeEmbedder) Name() string                 { return "fake" }
func (f *fakeEmbedder) Prepare(corpus []string) error { return nil }
func (f *fakeEmbedder) Dimension() int               { return 3 }
func (f *fakeEmbedder) Embed(context.Context, string) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float64{1, 0, 0}, nil
}

type fakeStore struct {
	results []domain.SearchResult
	err     error
}

func (f *fakeStore) Init(int) error                              { return nil }
func (f *fakeStore) Upsert([]domain.Chunk, [][]float64) error    { return nil }
func (f *fakeStore) Clear() error                                { return nil }
func (f *fakeStore) Search(_ context.Context, _ []float64, topK int) ([]domain.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if topK > len(f.results) {
		topK = len(f.results)
	}
	return f.results[:topK], nil
}

type fakeGenerator struct {
	reply string
	err   error
	seen  string
}

func (f *fakeGenerator) Generate(_ context.Context, system, user string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.seen = user
	return f.reply, nil
}

func TestAnswerHappyPath(t *testing.T) {
	store := &fakeStore{results: resultsWithPages(intPtr(1), intPtr(0), intPtr(1))}
	gen := &fakeGenerator{reply: "  The deadline is March 1.  "}
	p := New(&fakeEmbedder{}, store, gen)

	res, err := p.Answer(context.Background(), "What is the deadline?", 2)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if res.Answer != "The deadline is March 1." {
		t.Errorf("answer not stripped: %q", res.Answer)
	}
	if len(res.Sources) > 2 {
		t.Errorf("sources exceed top_k: %d", len(res.Sources))
	}
	if res.Elapsed < 0 {
		t.Errorf("negative elapsed: %v", res.Elapsed)
	}
	if res.Citations != "Citations: p.1, p.2" {
		t.Errorf("citations: %q", res.Citations)
	}
	if len(res.SourcePages) != 2 {
		t.Errorf("source pages: %v", res.SourcePages)
	}
	if !strings.Contains(gen.seen, "Question: What is the deadline?") {
		t.Errorf("generator did not receive the question:\n%s", gen.seen)
	}
	if !strings.Contains(gen.seen, "[source 1 | page 2]") {
		t.Errorf("generator did not receive the context block:\n%s", gen.seen)
	}
}

func TestAnswerPreconditions(t *testing.T) {
	p := New(&fakeEmbedder{}, &fakeStore{}, &fakeGenerator{reply: "x"})
	if _, err := p.Answer(context.Background(), "   ", 2); err == nil {
		t.Error("expected error for empty question")
	}
	if _, err := p.Answer(context.Background(), "q", 0); err == nil {
		t.Error("expected error for top_k < 1")
	}
}

func TestAnswerMissingCapabilityIsConfigurationError(t *testing.T) {
	p := New(nil, &fakeStore{}, &fakeGenerator{})
	_, err := p.Answer(context.Background(), "q", 1)
	if !errors.Is(err, qaerrors.ErrConfiguration) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestAnswerErrorTaxonomy(t *testing.T) {
	boom := errors.New("boom")

	p := New(&fakeEmbedder{err: boom}, &fakeStore{}, &fakeGenerator{})
	if _, err := p.Answer(context.Background(), "q", 1); !errors.Is(err, qaerrors.ErrRetrieval) {
		t.Errorf("embed failure: expected RetrievalError, got %v", err)
	}

	p = New(&fakeEmbedder{}, &fakeStore{err: boom}, &fakeGenerator{})
	if _, err := p.Answer(context.Background(), "q", 1); !errors.Is(err, qaerrors.ErrRetrieval) {
		t.Errorf("search failure: expected RetrievalError, got %v", err)
	}

	p = New(&fakeEmbedder{}, &fakeStore{}, &fakeGenerator{err: boom})
	if _, err := p.Answer(context.Background(), "q", 1); !errors.Is(err, qaerrors.ErrGeneration) {
		t.Errorf("generate failure: expected GenerationError, got %v", err)
	}
	if _, err := p.Answer(context.Background(), "q", 1); !errors.Is(err, boom) {
		t.Errorf("cause not preserved through wrap")
	}
}
