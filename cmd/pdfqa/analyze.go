package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfqa/internal/events"
	"pdfqa/internal/experiment"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		experiments []string
		showVotes   bool
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize logged events per A/B variant",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(experiments) == 0 {
				experiments = []string{cfg.Experiment.LiveName, cfg.Experiment.OfflineName}
			}
			store := events.NewStore(cfg.EventsPath())
			measurements, err := store.Measurements(cmd.Context(), experiments...)
			if err != nil {
				return err
			}
			summary := experiment.Summarize(measurements, cfg.Experiment.VariantNames())

			if showVotes {
				breakdown, err := store.VoteBreakdown(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					printJSON(map[string]any{"summary": summary, "votes": breakdown})
					return nil
				}
				printSummary(cfg.Experiment.VariantNames(), summary)
				fmt.Println("\nVote breakdown:")
				for _, vc := range breakdown {
					fmt.Printf("  %s / %s / %s: %d\n", vc.Experiment, vc.Variant, vc.UserVote, vc.Count)
				}
				return nil
			}

			if jsonOutput {
				printJSON(summary)
				return nil
			}
			printSummary(cfg.Experiment.VariantNames(), summary)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&experiments, "experiment", nil, "Experiment name(s) to include (default: live and offline)")
	cmd.Flags().BoolVar(&showVotes, "votes", false, "Also print the raw vote breakdown")
	return cmd
}

func printSummary(variants []string, summary experiment.Summary) {
	for _, name := range variants {
		vs := summary[name]
		fmt.Printf("Variant %s:\n", name)
		if vs.Latency == nil {
			fmt.Println("  latency: no samples")
		} else {
			fmt.Printf("  latency: n=%d mean=%.1fms median=%.1fms\n",
				vs.Latency.Count, vs.Latency.MeanMS, vs.Latency.MedianMS)
		}
		if vs.Votes.Votes == 0 {
			fmt.Println("  votes:   none")
		} else {
			fmt.Printf("  votes:   %d (%d up / %d down, %.1f%% up)\n",
				vs.Votes.Votes, vs.Votes.Up, vs.Votes.Down, *vs.Votes.UpRatePct)
		}
	}
}
