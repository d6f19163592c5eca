package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pdfqa/internal/events"
	"pdfqa/internal/experiment"
	"pdfqa/internal/tui"
)

func newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Interactive ask-and-vote session",
		Long: `ui starts a terminal session against the persisted index. Each session
gets a fresh id and a randomly assigned A/B variant that stays fixed until
exit; every answered question and every vote is logged to the event store.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pipeline, summary, err := buildPipeline(cfg)
			if err != nil {
				return err
			}
			sess, err := experiment.NewSession(cfg.Experiment.Variants)
			if err != nil {
				return err
			}
			store := events.NewStore(cfg.EventsPath())
			m := tui.New(pipeline, store, sess, cfg.Experiment.LiveName, summary)
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}
