package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"pdfqa/internal/events"
	"pdfqa/internal/experiment"
)

func newAskCmd() *cobra.Command {
	var (
		question string
		topK     int
	)
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer a question about the indexed document",
		Long: `ask answers a single question using the persisted index and logs the
result to the event store under this machine's session. The session's A/B
variant decides how many chunks are retrieved; --top-k overrides it, in
which case the event is labeled "custom" and excluded from the analysis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sess, err := experiment.LoadSession(cfg.SessionPath(), cfg.Experiment.Variants)
			if err != nil {
				return err
			}
			variant := sess.Variant
			k := sess.TopK
			if topK > 0 {
				variant = "custom"
				k = topK
			}

			pipeline, _, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			res, err := pipeline.Answer(cmd.Context(), question, k)
			if err != nil {
				return err
			}

			ev := events.Event{
				SessionID:   sess.ID,
				Experiment:  cfg.Experiment.LiveName,
				Variant:     variant,
				Question:    question,
				TopK:        k,
				LatencyMS:   res.Elapsed.Milliseconds(),
				Citations:   res.Citations,
				SourcePages: res.SourcePages,
				Answer:      res.Answer,
			}
			store := events.NewStore(cfg.EventsPath())
			if err := store.Append(cmd.Context(), ev); err != nil {
				return err
			}
			if err := saveLastResult(cfg.LastResultPath(), ev); err != nil {
				return err
			}

			if jsonOutput {
				printJSON(map[string]any{
					"answer":       res.Answer,
					"citations":    res.Citations,
					"source_pages": res.SourcePages,
					"variant":      variant,
					"top_k":        k,
					"latency_ms":   ev.LatencyMS,
				})
				return nil
			}
			fmt.Println(res.Answer)
			fmt.Println()
			fmt.Println(res.Citations)
			for i, src := range res.Sources {
				page := "?"
				if src.Page != nil {
					page = strconv.Itoa(*src.Page)
				}
				fmt.Printf("\n%d. Page %s | %s\n", i+1, page, src.Snippet)
			}
			fmt.Printf("\n[%s top_k=%d, %.2fs] Rate it with `pdfqa vote up` or `pdfqa vote down`.\n",
				variant, k, res.Elapsed.Seconds())
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "Question to answer")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Override retrieval width (0 = use the session's variant)")
	_ = cmd.MarkFlagRequired("question")
	return cmd
}

func saveLastResult(path string, ev events.Event) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(ev, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
