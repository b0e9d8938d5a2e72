package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"podscan/internal/orchestrator"
	"podscan/internal/scanner"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var songList, problems string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the clean song list and the problem report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			if songList != "" {
				o.Config().Output.SongList = songList
			}
			if problems != "" {
				o.Config().Output.ProblemReport = problems
			}

			stats, err := o.Export(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), stats.Summary())
			return nil
		},
	}

	cmd.Flags().StringVarP(&songList, "output", "o", "", "Song list file")
	cmd.Flags().StringVar(&problems, "problems", "", "Problem report file")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var opts orchestrator.CopyOptions

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Copy every song whose title contains keyword",
		Long: "Copy every song whose title contains keyword (case-sensitive) into the search directory.\n\n" +
			"Songs copied by an earlier search that are still in the directory are not copied again.\n" +
			"Other name collisions get a numbered name (song_1.mp3).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			_, err = o.Search(cmd.Context(), args[0], opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.DestDir, "dest", "d", "", "Destination directory")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be copied without copying")
	return cmd
}

func newNoArtistCommand(ctx *commandContext) *cobra.Command {
	var reportFile string

	cmd := &cobra.Command{
		Use:   "no-artist",
		Short: "List songs that have a title but no artist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			if reportFile != "" {
				o.Config().Output.NoArtistReport = reportFile
			}
			result, err := o.FindWithoutArtist(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report saved to: %s\n", result.ReportPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&reportFile, "output", "o", "", "Report file")
	return cmd
}

func newCountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count audio files per type",
		Long:  "Count audio files per type.\n\nCounted types: " + strings.Join(scanner.SupportedExtensions(), " "),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			_, err = o.Count(cmd.Context())
			return err
		},
	}
}

func newBackupCommand(ctx *commandContext) *cobra.Command {
	var opts orchestrator.CopyOptions

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Copy every audio file into one flat directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			_, err = o.Backup(cmd.Context(), opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.DestDir, "dest", "d", "", "Backup directory")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be copied without copying")
	return cmd
}

func newJournalCommand(ctx *commandContext) *cobra.Command {
	var opts orchestrator.JournalOptions

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List the copy runs recorded in a destination directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator(cmd)
			if err != nil {
				return err
			}
			_, err = o.Journal(opts)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.DestDir, "dest", "d", "", "Destination directory (default: backup directory)")
	cmd.Flags().StringVar(&opts.Origin, "origin", "", "Show where this copied file came from")
	return cmd
}
