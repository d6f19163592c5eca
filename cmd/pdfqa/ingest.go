package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfqa/internal/domain"
	tfidfemb "pdfqa/internal/embedding/tfidf"
	"pdfqa/internal/index"
	"pdfqa/internal/ingest"
	"pdfqa/internal/loader"
	"pdfqa/internal/summarizer"
	"pdfqa/internal/vectorstore/memory"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.pdf|file.txt> ...",
		Short: "Index one or more documents for question answering",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var docs []domain.Document
			for _, path := range args {
				loaded, err := loader.Load(path)
				if err != nil {
					return err
				}
				docs = append(docs, loaded...)
			}

			ch, err := buildChunker(cfg)
			if err != nil {
				return err
			}
			embedder, err := buildFreshEmbedder(cfg)
			if err != nil {
				return err
			}
			store, err := buildFreshStore(cfg)
			if err != nil {
				return err
			}

			in := &ingest.Ingestor{
				Chunker:             ch,
				Embedder:            embedder,
				Store:               store,
				Summarizer:          summarizer.NewFrequencySummarizer(),
				SummaryMaxSentences: cfg.Summarizer.MaxSentences,
			}
			stats, err := in.Ingest(cmd.Context(), docs)
			if err != nil {
				return err
			}

			// The memory store lives only in this process; persist it (plus
			// the fitted tfidf model) so later commands can reload it.
			if mem, ok := store.(*memory.Storage); ok {
				chunks, vectors := mem.Dump()
				file := &index.File{
					Embedder:  embedder.Name(),
					Dimension: stats.Dimension,
					Summary:   stats.Summary,
					Chunks:    chunks,
					Vectors:   vectors,
				}
				if tf, ok := embedder.(*tfidfemb.Embedder); ok {
					state, err := tf.State()
					if err != nil {
						return err
					}
					file.TFIDF = &state
				}
				if err := index.Save(cfg.IndexPath(), file); err != nil {
					return fmt.Errorf("persist index %s: %w", cfg.IndexPath(), err)
				}
			}

			if jsonOutput {
				printJSON(map[string]any{
					"documents": stats.Documents,
					"chunks":    stats.Chunks,
					"dimension": stats.Dimension,
					"elapsed_s": stats.Elapsed.Seconds(),
				})
				return nil
			}
			fmt.Printf("Indexed %d document(s) into %d chunks (dim=%d) in %.2fs\n",
				stats.Documents, stats.Chunks, stats.Dimension, stats.Elapsed.Seconds())
			if stats.Summary != "" {
				fmt.Printf("Overview: %s\n", stats.Summary)
			}
			return nil
		},
	}
}
