// Package chart renders the A/B comparison page: the thumbs-up rate per
// variant from the interactive experiment and the latency distribution per
// variant across interactive and offline runs.
package chart

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"pdfqa/internal/events"
)

// VariantSeries is the raw per-variant material the two panels draw.
type VariantSeries struct {
	Latencies []float64
	Up        int
	Down      int
}

// Votes returns the number of voted rows.
func (s VariantSeries) Votes() int { return s.Up + s.Down }

// UpRate returns the thumbs-up fraction, 0 with no votes.
func (s VariantSeries) UpRate() float64 {
	if s.Votes() == 0 {
		return 0
	}
	return float64(s.Up) / float64(s.Votes())
}

// Collect splits measurements per declared variant. Latencies come from every
// experiment in the input; votes only from liveExperiment, since feedback
// exists on the interactive path alone. Undeclared variants are dropped.
func Collect(measurements []events.Measurement, liveExperiment string, variants []string) map[string]*VariantSeries {
	series := make(map[string]*VariantSeries, len(variants))
	for _, v := range variants {
		series[v] = &VariantSeries{}
	}
	for _, m := range measurements {
		s, ok := series[m.Variant]
		if !ok {
			continue
		}
		s.Latencies = append(s.Latencies, float64(m.LatencyMS))
		if m.Experiment != liveExperiment {
			continue
		}
		switch m.UserVote {
		case "up":
			s.Up++
		case "down":
			s.Down++
		}
	}
	return series
}

// Render writes the two-panel HTML page: an up-rate bar chart with vote
// counts in the labels, and a latency boxplot.
func Render(w io.Writer, variants []string, series map[string]*VariantSeries) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Thumbs-up rate (interactive only)"}),
		charts.WithYAxisOpts(opts.YAxis{Max: 1}),
	)
	labels := make([]string, len(variants))
	rates := make([]opts.BarData, len(variants))
	for i, v := range variants {
		s := series[v]
		labels[i] = fmt.Sprintf("%s (n=%d)", v, s.Votes())
		rates[i] = opts.BarData{Value: s.UpRate()}
	}
	bar.SetXAxis(labels).AddSeries("up rate", rates)

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Latency (ms), interactive + offline"}),
	)
	boxes := make([]opts.BoxPlotData, len(variants))
	for i, v := range variants {
		boxes[i] = opts.BoxPlotData{Value: fiveNumber(series[v].Latencies)}
	}
	box.SetXAxis(variants).AddSeries("latency_ms", boxes)

	page := components.NewPage()
	page.AddCharts(bar, box)
	return page.Render(w)
}

// fiveNumber computes the boxplot summary [min, Q1, median, Q3, max] with
// median-exclusive quartiles. Empty input yields all zeros.
func fiveNumber(xs []float64) []float64 {
	if len(xs) == 0 {
		return []float64{0, 0, 0, 0, 0}
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 1 {
		v := sorted[0]
		return []float64{v, v, v, v, v}
	}
	lower := sorted[:n/2]
	upper := sorted[(n+1)/2:]
	return []float64{sorted[0], medianOf(lower), medianOf(sorted), medianOf(upper), sorted[n-1]}
}

func medianOf(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}
