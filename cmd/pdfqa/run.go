package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pdfqa/internal/events"
	"pdfqa/internal/experiment"
)

func newRunCmd() *cobra.Command {
	var (
		questionsPath string
		limit         int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the offline A/B experiment over a question set",
		Long: `run answers every question in the given file under every declared
variant and logs one event per (question, variant) pair. The question file is
a JSON array of strings. Failures are reported at the end without aborting
the remaining pairs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			questions, err := loadQuestions(questionsPath)
			if err != nil {
				return err
			}
			if limit > 0 && limit < len(questions) {
				questions = questions[:limit]
			}
			if len(questions) == 0 {
				return fmt.Errorf("no questions in %s", questionsPath)
			}

			pipeline, _, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			runner := &experiment.Runner{
				Answerer:   pipeline,
				Store:      events.NewStore(cfg.EventsPath()),
				Experiment: cfg.Experiment.OfflineName,
				Variants:   cfg.Experiment.Variants,
				Logger:     slog.Default(),
			}
			report, err := runner.Run(cmd.Context(), questions)
			if err != nil {
				return err
			}

			if jsonOutput {
				failures := make([]map[string]string, 0, len(report.Failures))
				for _, f := range report.Failures {
					failures = append(failures, map[string]string{
						"question": f.Question, "variant": f.Variant, "error": f.Err.Error(),
					})
				}
				printJSON(map[string]any{
					"session_id": report.SessionID,
					"completed":  report.Completed,
					"failures":   failures,
				})
			} else {
				fmt.Printf("Completed %d pair(s), %d failure(s). Session %s.\n",
					report.Completed, len(report.Failures), report.SessionID)
				for _, f := range report.Failures {
					fmt.Printf("  FAILED [%s] %s: %v\n", f.Variant, f.Question, f.Err)
				}
			}
			if report.Completed == 0 {
				return fmt.Errorf("no pair completed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&questionsPath, "questions", "", "Path to a JSON array of questions")
	cmd.Flags().IntVar(&limit, "limit", 0, "Answer only the first N questions (0 = all)")
	_ = cmd.MarkFlagRequired("questions")
	return cmd
}

func loadQuestions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var questions []string
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return questions, nil
}
