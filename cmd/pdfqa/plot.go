package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pdfqa/internal/chart"
	"pdfqa/internal/events"
)

func newPlotCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the A/B comparison chart",
		Long: `plot renders a two-panel HTML page from the event log: the thumbs-up
rate per variant (interactive sessions only) and the latency distribution
per variant across interactive and offline runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store := events.NewStore(cfg.EventsPath())
			measurements, err := store.Measurements(cmd.Context(),
				cfg.Experiment.LiveName, cfg.Experiment.OfflineName)
			if err != nil {
				return err
			}
			series := chart.Collect(measurements, cfg.Experiment.LiveName, cfg.Experiment.VariantNames())

			if out == "" {
				out = filepath.Join(cfg.DataDir, "ab_results.html")
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := chart.Render(f, cfg.Experiment.VariantNames(), series); err != nil {
				return err
			}
			if jsonOutput {
				printJSON(map[string]string{"chart": out})
				return nil
			}
			fmt.Printf("Saved chart to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output HTML path (default: <data_dir>/ab_results.html)")
	return cmd
}
