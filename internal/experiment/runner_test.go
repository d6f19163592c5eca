package experiment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"pdfqa/internal/events"
	"pdfqa/internal/rag"
)

type stubAnswerer struct {
	failOn string
	calls  []int
}

func (s *stubAnswerer) Answer(_ context.Context, question string, topK int) (*rag.Result, error) {
	if question == s.failOn {
		return nil, errors.New("capability down")
	}
	s.calls = append(s.calls, topK)
	return &rag.Result{
		Answer:      "answer",
		Citations:   "Citations: p.1",
		Elapsed:     1500 * time.Millisecond,
		SourcePages: []int{1},
	}, nil
}

type memAppender struct {
	appended []events.Event
	err      error
}

func (m *memAppender) Append(_ context.Context, ev events.Event) error {
	if m.err != nil {
		return m.err
	}
	m.appended = append(m.appended, ev)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOneEventPerQuestionVariantPair(t *testing.T) {
	answerer := &stubAnswerer{}
	store := &memAppender{}
	r := &Runner{
		Answerer:   answerer,
		Store:      store,
		Experiment: "topk_ab_offline_k2_k4",
		Variants:   map[string]int{"B": 4, "A": 2},
		Logger:     quietLogger(),
	}

	report, err := r.Run(context.Background(), []string{"What is the deadline?"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Completed != 2 || len(report.Failures) != 0 {
		t.Fatalf("report: %+v", report)
	}
	if len(store.appended) != 2 {
		t.Fatalf("expected 2 events, got %d", len(store.appended))
	}
	// Variants in sorted order, top_k from the mapping, no vote.
	if store.appended[0].Variant != "A" || store.appended[0].TopK != 2 {
		t.Errorf("first event: %+v", store.appended[0])
	}
	if store.appended[1].Variant != "B" || store.appended[1].TopK != 4 {
		t.Errorf("second event: %+v", store.appended[1])
	}
	for _, ev := range store.appended {
		if ev.UserVote != "" {
			t.Errorf("offline run must not carry votes: %+v", ev)
		}
		if ev.SessionID != report.SessionID {
			t.Errorf("event session %q != run session %q", ev.SessionID, report.SessionID)
		}
		if ev.LatencyMS != 1500 {
			t.Errorf("latency: %d", ev.LatencyMS)
		}
		if ev.Experiment != "topk_ab_offline_k2_k4" {
			t.Errorf("experiment: %q", ev.Experiment)
		}
	}
}

func TestRunIsolatesItemFailures(t *testing.T) {
	answerer := &stubAnswerer{failOn: "bad question"}
	store := &memAppender{}
	r := &Runner{
		Answerer:   answerer,
		Store:      store,
		Experiment: "exp",
		Variants:   map[string]int{"A": 2, "B": 4},
		Logger:     quietLogger(),
	}

	report, err := r.Run(context.Background(), []string{"bad question", "good question"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Completed != 2 {
		t.Errorf("completed: %d", report.Completed)
	}
	if len(report.Failures) != 2 {
		t.Fatalf("failures: %+v", report.Failures)
	}
	for _, f := range report.Failures {
		if f.Question != "bad question" {
			t.Errorf("unexpected failed question: %q", f.Question)
		}
	}
	if len(store.appended) != 2 {
		t.Errorf("expected 2 logged events, got %d", len(store.appended))
	}
}

func TestRunRecordsAppendFailures(t *testing.T) {
	r := &Runner{
		Answerer:   &stubAnswerer{},
		Store:      &memAppender{err: errors.New("disk full")},
		Experiment: "exp",
		Variants:   map[string]int{"A": 2},
		Logger:     quietLogger(),
	}
	report, err := r.Run(context.Background(), []string{"q"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Completed != 0 || len(report.Failures) != 1 {
		t.Fatalf("report: %+v", report)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{
		Answerer:   &stubAnswerer{},
		Store:      &memAppender{},
		Experiment: "exp",
		Variants:   map[string]int{"A": 2},
		Logger:     quietLogger(),
	}
	if _, err := r.Run(ctx, []string{"q"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
