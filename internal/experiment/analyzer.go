package experiment

import (
	"math"
	"sort"

	"pdfqa/internal/events"
)

// LatencyStats summarizes latencies for one variant, in milliseconds rounded
// to one decimal place.
type LatencyStats struct {
	Count    int     `json:"n"`
	MeanMS   float64 `json:"mean_ms"`
	MedianMS float64 `json:"median_ms"`
}

// VoteStats summarizes feedback for one variant. UpRatePct is only present
// when at least one vote exists.
type VoteStats struct {
	Votes     int      `json:"votes"`
	Up        int      `json:"up,omitempty"`
	Down      int      `json:"down,omitempty"`
	UpRatePct *float64 `json:"up_rate_pct,omitempty"`
}

// VariantSummary pairs latency and vote summaries. Latency is nil when the
// variant has no samples.
type VariantSummary struct {
	Latency *LatencyStats `json:"latency"`
	Votes   VoteStats     `json:"votes"`
}

// Summary maps each declared variant to its aggregates.
type Summary map[string]VariantSummary

// Summarize aggregates raw measurements over the declared variant set.
// Rows with undeclared variant labels are ignored.
func Summarize(measurements []events.Measurement, variants []string) Summary {
	declared := make(map[string]struct{}, len(variants))
	for _, v := range variants {
		declared[v] = struct{}{}
	}

	latencies := make(map[string][]float64)
	up := make(map[string]int)
	down := make(map[string]int)
	for _, m := range measurements {
		if _, ok := declared[m.Variant]; !ok {
			continue
		}
		latencies[m.Variant] = append(latencies[m.Variant], float64(m.LatencyMS))
		switch m.UserVote {
		case "up":
			up[m.Variant]++
		case "down":
			down[m.Variant]++
		}
	}

	summary := make(Summary, len(variants))
	for _, v := range variants {
		vs := VariantSummary{
			Votes: VoteStats{Up: up[v], Down: down[v], Votes: up[v] + down[v]},
		}
		if vs.Votes.Votes > 0 {
			rate := round1(float64(vs.Votes.Up) / float64(vs.Votes.Votes) * 100)
			vs.Votes.UpRatePct = &rate
		}
		if samples := latencies[v]; len(samples) > 0 {
			vs.Latency = &LatencyStats{
				Count:    len(samples),
				MeanMS:   round1(mean(samples)),
				MedianMS: round1(median(samples)),
			}
		}
		summary[v] = vs
	}
	return summary
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
