package experiment

import (
	"testing"

	"pdfqa/internal/events"
)

func m(variant string, latencyMS int64, vote string) events.Measurement {
	return events.Measurement{Experiment: "exp", Variant: variant, LatencyMS: latencyMS, UserVote: vote}
}

func TestSummarizeVoteRate(t *testing.T) {
	ms := []events.Measurement{
		m("A", 100, "up"), m("A", 110, "up"), m("A", 120, "up"), m("A", 130, "down"),
		m("B", 200, ""),
	}
	summary := Summarize(ms, []string{"A", "B"})

	a := summary["A"]
	if a.Votes.Votes != 4 || a.Votes.Up != 3 || a.Votes.Down != 1 {
		t.Fatalf("vote counts: %+v", a.Votes)
	}
	if a.Votes.UpRatePct == nil || *a.Votes.UpRatePct != 75.0 {
		t.Fatalf("up rate: %v", a.Votes.UpRatePct)
	}

	b := summary["B"]
	if b.Votes.Votes != 0 {
		t.Fatalf("B votes: %+v", b.Votes)
	}
	if b.Votes.UpRatePct != nil {
		t.Fatal("zero votes must not report a rate")
	}
}

func TestSummarizeLatencyStats(t *testing.T) {
	ms := []events.Measurement{
		m("A", 100, ""), m("A", 200, ""), m("A", 350, ""),
	}
	summary := Summarize(ms, []string{"A", "B"})

	a := summary["A"]
	if a.Latency == nil {
		t.Fatal("expected latency stats for A")
	}
	if a.Latency.Count != 3 {
		t.Errorf("count: %d", a.Latency.Count)
	}
	if a.Latency.MeanMS != 216.7 {
		t.Errorf("mean: %v", a.Latency.MeanMS)
	}
	if a.Latency.MedianMS != 200.0 {
		t.Errorf("median: %v", a.Latency.MedianMS)
	}

	if summary["B"].Latency != nil {
		t.Error("B has no samples; latency must be nil, not zeroes")
	}
}

func TestSummarizeEvenSampleMedian(t *testing.T) {
	ms := []events.Measurement{
		m("A", 100, ""), m("A", 300, ""), m("A", 200, ""), m("A", 400, ""),
	}
	summary := Summarize(ms, []string{"A"})
	if got := summary["A"].Latency.MedianMS; got != 250.0 {
		t.Fatalf("median: %v", got)
	}
}

func TestSummarizeIgnoresUndeclaredVariants(t *testing.T) {
	ms := []events.Measurement{
		m("A", 100, "up"),
		m("C", 999, "up"), // not declared
	}
	summary := Summarize(ms, []string{"A", "B"})
	if _, ok := summary["C"]; ok {
		t.Fatal("undeclared variant leaked into summary")
	}
	if summary["A"].Latency.Count != 1 {
		t.Fatalf("A count: %d", summary["A"].Latency.Count)
	}
}
