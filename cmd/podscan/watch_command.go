package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"podscan/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var skipInitial bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the export whenever audio files change",
		Long: "Watch the music root and its F* folders and re-run the export once changes settle.\n" +
			"Press Ctrl-C to stop.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			cfg := o.Config()
			out := ctx.output(cmd)

			w := watcher.New(&watcher.WatchConfig{
				Root:            cfg.MusicRoot,
				Debounce:        time.Duration(cfg.Watch.DebounceSeconds) * time.Second,
				StableThreshold: time.Duration(cfg.Watch.StableThresholdMs) * time.Millisecond,
				InitialRun:      !skipInitial,
			}, func(runCtx context.Context) error {
				stats, err := o.Export(runCtx)
				if err != nil {
					return err
				}
				out.Info("%s\n", stats.Summary())
				return nil
			}, o.Logger())

			out.Info("Watching %s (Ctrl-C to stop)", cfg.MusicRoot)
			summary, err := w.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nWatch session ended after %s\n", summary.Duration.Round(time.Second))
			fmt.Fprintf(cmd.OutOrStdout(), "Runs: %d (%d failed)\n", summary.Runs, summary.FailedRuns)
			fmt.Fprintf(cmd.OutOrStdout(), "Events: %d seen, %d ignored\n", summary.EventsSeen, summary.EventsIgnored)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipInitial, "no-initial", false, "Wait for the first change instead of exporting at startup")
	return cmd
}
