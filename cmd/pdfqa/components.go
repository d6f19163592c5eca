package main

import (
	"fmt"
	"strings"
	"time"

	"pdfqa/internal/chunker"
	"pdfqa/internal/config"
	"pdfqa/internal/domain"
	openaiemb "pdfqa/internal/embedding/openai"
	tfidfemb "pdfqa/internal/embedding/tfidf"
	openaigen "pdfqa/internal/generation/openai"
	"pdfqa/internal/index"
	"pdfqa/internal/qaerrors"
	"pdfqa/internal/rag"
	"pdfqa/internal/vectorstore/memory"
	"pdfqa/internal/vectorstore/qdrant"
)

func buildChunker(cfg *config.AppConfig) (domain.Chunker, error) {
	switch cfg.Chunker.Type {
	case "character", "":
		return chunker.NewCharacterChunker(cfg.Chunker.ChunkSize, cfg.Chunker.ChunkOverlap), nil
	case "sentence":
		return chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences), nil
	default:
		return nil, qaerrors.NewConfigurationError("unknown chunker: " + cfg.Chunker.Type)
	}
}

// buildFreshEmbedder returns an unprepared embedder for ingest.
func buildFreshEmbedder(cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return tfidfemb.NewEmbedder(), nil
	case "openai":
		return openaiemb.NewClient(openaiEmbedderConfig(cfg))
	default:
		return nil, qaerrors.NewConfigurationError("unknown embedder: " + cfg.Embedder.Type)
	}
}

// buildFreshStore returns an empty vector store for ingest.
func buildFreshStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	switch cfg.VectorStore.Type {
	case "memory", "":
		return memory.NewStorage(), nil
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, qaerrors.NewConfigurationError("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, qaerrors.NewConfigurationError("unknown vector store: " + cfg.VectorStore.Type)
	}
}

func openaiEmbedderConfig(cfg *config.AppConfig) openaiemb.Config {
	out := openaiemb.Config{APIKeyEnv: "OPENAI_API_KEY"}
	if c := cfg.Embedder.OpenAI; c != nil {
		out.APIKeyEnv = c.APIKeyEnv
		out.Model = c.Model
		out.Timeout = time.Duration(c.TimeoutSecs) * time.Second
	}
	return out
}

func buildGenerator(cfg *config.AppConfig) (domain.Generator, error) {
	return openaigen.NewClient(openaigen.Config{
		APIKeyEnv: cfg.Generator.APIKeyEnv,
		Model:     cfg.Generator.Model,
		Timeout:   time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	})
}

// buildPipeline assembles the answer pipeline for the ask/run/ui commands,
// restoring the persisted index when the memory store is configured. The
// returned summary text is a short overview of the indexed document (empty
// for remote stores).
func buildPipeline(cfg *config.AppConfig) (*rag.Pipeline, string, error) {
	generator, err := buildGenerator(cfg)
	if err != nil {
		return nil, "", err
	}

	if cfg.VectorStore.Type == "qdrant" {
		embedder, err := buildFreshEmbedder(cfg)
		if err != nil {
			return nil, "", err
		}
		store, err := buildFreshStore(cfg)
		if err != nil {
			return nil, "", err
		}
		return rag.New(embedder, store, generator), "", nil
	}

	idx, err := index.Load(cfg.IndexPath())
	if err != nil {
		return nil, "", fmt.Errorf("no index at %s (run `pdfqa ingest` first): %w", cfg.IndexPath(), err)
	}

	var embedder domain.Embedder
	switch idx.Embedder {
	case "tfidf":
		if idx.TFIDF == nil {
			return nil, "", fmt.Errorf("index %s has no tfidf state", cfg.IndexPath())
		}
		embedder, err = tfidfemb.NewFromState(*idx.TFIDF)
		if err != nil {
			return nil, "", err
		}
	case "openai":
		embedder, err = openaiemb.NewClient(openaiEmbedderConfig(cfg))
		if err != nil {
			return nil, "", err
		}
	default:
		return nil, "", fmt.Errorf("index %s built with unknown embedder %q", cfg.IndexPath(), idx.Embedder)
	}

	store := memory.NewStorage()
	if err := store.Init(idx.Dimension); err != nil {
		return nil, "", err
	}
	if err := store.Upsert(idx.Chunks, idx.Vectors); err != nil {
		return nil, "", err
	}

	summary := idx.Summary
	if summary == "" {
		summary = indexOverview(idx)
	}
	return rag.New(embedder, store, generator), summary, nil
}

// indexOverview is the fallback header line for indexes built before the
// summary was persisted.
func indexOverview(idx *index.File) string {
	sources := make(map[string]struct{})
	for _, ch := range idx.Chunks {
		if ch.Source != "" {
			sources[ch.Source] = struct{}{}
		}
	}
	names := make([]string, 0, len(sources))
	for s := range sources {
		names = append(names, s)
	}
	return fmt.Sprintf("%d chunks from %s", len(idx.Chunks), strings.Join(names, ", "))
}
