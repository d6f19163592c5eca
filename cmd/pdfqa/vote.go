package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pdfqa/internal/events"
)

func newVoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "vote up|down",
		Short:     "Rate the most recent answer",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := args[0]
			if direction != "up" && direction != "down" {
				return fmt.Errorf("vote must be up or down, got %q", direction)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(cfg.LastResultPath())
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("no answer to rate yet (run `pdfqa ask` first)")
				}
				return err
			}
			var ev events.Event
			if err := json.Unmarshal(data, &ev); err != nil {
				return fmt.Errorf("parse %s: %w", cfg.LastResultPath(), err)
			}

			// Feedback is a fresh append carrying the original answer context,
			// not an update of the logged row.
			ev.ID = 0
			ev.Timestamp = time.Time{}
			ev.UserVote = direction

			store := events.NewStore(cfg.EventsPath())
			if err := store.Append(cmd.Context(), ev); err != nil {
				return err
			}
			if jsonOutput {
				printJSON(map[string]string{"vote": direction, "variant": ev.Variant})
				return nil
			}
			fmt.Printf("Recorded %s vote for variant %s.\n", direction, ev.Variant)
			return nil
		},
	}
}
