package experiment

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"pdfqa/internal/events"
	"pdfqa/internal/rag"
)

// Answerer is the pipeline surface the runner drives.
type Answerer interface {
	Answer(ctx context.Context, question string, topK int) (*rag.Result, error)
}

// Appender is the event-store surface the runner writes to.
type Appender interface {
	Append(ctx context.Context, ev events.Event) error
}

// Runner answers every question under every declared variant and logs one
// event per (question, variant) pair, all sharing a single session id.
type Runner struct {
	Answerer   Answerer
	Store      Appender
	Experiment string
	Variants   map[string]int
	Logger     *slog.Logger
}

// Failure records one (question, variant) pair that did not complete.
type Failure struct {
	Question string
	Variant  string
	Err      error
}

// Report summarizes a run.
type Report struct {
	SessionID string
	Completed int
	Failures  []Failure
}

// Run processes questions strictly sequentially, variants in sorted-name
// order. A failing pair is recorded and the run continues; the report carries
// every failure so nothing is silently dropped.
func (r *Runner) Run(ctx context.Context, questions []string) (*Report, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	variants := make([]string, 0, len(r.Variants))
	for name := range r.Variants {
		variants = append(variants, name)
	}
	sort.Strings(variants)

	report := &Report{SessionID: uuid.NewString()}
	logger.Info("experiment run started",
		"experiment", r.Experiment, "session_id", report.SessionID,
		"questions", len(questions), "variants", variants)

	for _, question := range questions {
		for _, variant := range variants {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			topK := r.Variants[variant]
			res, err := r.Answerer.Answer(ctx, question, topK)
			if err != nil {
				report.Failures = append(report.Failures, Failure{Question: question, Variant: variant, Err: err})
				logger.Error("answer failed", "variant", variant, "question", question, "error", err)
				continue
			}
			ev := events.Event{
				SessionID:   report.SessionID,
				Experiment:  r.Experiment,
				Variant:     variant,
				Question:    question,
				TopK:        topK,
				LatencyMS:   res.Elapsed.Milliseconds(),
				Citations:   res.Citations,
				SourcePages: res.SourcePages,
				Answer:      res.Answer,
			}
			if err := r.Store.Append(ctx, ev); err != nil {
				report.Failures = append(report.Failures, Failure{Question: question, Variant: variant, Err: err})
				logger.Error("append failed", "variant", variant, "question", question, "error", err)
				continue
			}
			report.Completed++
			logger.Info("answered", "variant", variant, "top_k", topK,
				"latency_ms", ev.LatencyMS, "question", truncate(question, 60))
		}
	}
	return report, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
