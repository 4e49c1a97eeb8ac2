package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/roastume/internal/common"
	"github.com/joseph-ayodele/roastume/internal/ingest"
)

var (
	watchInitialScan bool
	watchSkipHidden  bool
	watchDebounce    time.Duration
	watchOnce        bool
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", true, "submit PDFs already present in the directory")
	watchCmd.Flags().BoolVar(&watchSkipHidden, "skip-hidden", true, "ignore dot files and dot directories")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "coalesce write bursts for this long")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "submit existing PDFs and exit instead of watching")
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Submit every PDF dropped into a directory",
	Long: `Watch a directory tree and submit new or modified PDF files for review.
Identical files are submitted once per run.

Examples:
  # Watch ./inbox until interrupted
  reviewctl watch ./inbox

  # Submit what is there now and exit
  reviewctl watch --once ./inbox`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cmd.ErrOrStderr(), cfg.Log)

	client, conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := ingest.SubmitterFunc(func(ctx context.Context, _ string, content []byte) (string, error) {
		return upload(ctx, client, content)
	})
	ing := ingest.NewIngestor(sub, cfg.Server.MaxUploadBytes, logger)
	out := cmd.OutOrStdout()

	if watchOnce {
		results, stats, err := ing.IngestDirectory(cmd.Context(), args[0], watchSkipHidden)
		for _, r := range results {
			if r.Err != "" {
				fmt.Fprintf(out, "FAIL\t%s\t%s\n", r.Path, r.Err)
				continue
			}
			fmt.Fprintf(out, "OK\t%s\t%s\n", r.Path, r.ReviewID)
		}
		fmt.Fprintf(out, "matched=%d succeeded=%d deduplicated=%d failed=%d\n",
			stats.Matched, stats.Succeeded, stats.Deduplicated, stats.Failed)
		return err
	}

	return ing.Watch(cmd.Context(), ingest.WatchConfig{
		Roots:       []string{args[0]},
		InitialScan: watchInitialScan,
		SkipHidden:  watchSkipHidden,
		Debounce:    watchDebounce,
		Logger:      logger,
	}, func(r ingest.Result, err error) {
		if err != nil {
			fmt.Fprintf(out, "FAIL\t%s\t%v\n", r.Path, err)
			return
		}
		fmt.Fprintf(out, "OK\t%s\t%s\n", r.Path, r.ReviewID)
	})
}
