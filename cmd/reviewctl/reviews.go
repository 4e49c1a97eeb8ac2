package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/roastume/internal/common"
	"github.com/joseph-ayodele/roastume/internal/entity"
	"github.com/joseph-ayodele/roastume/internal/server"
	"github.com/joseph-ayodele/roastume/internal/utils"
)

var (
	submitWait     bool
	submitInterval time.Duration
	exportOut      string
)

func init() {
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(exportCmd)

	submitCmd.Flags().BoolVar(&submitWait, "wait", false, "poll until the review reaches a terminal status")
	submitCmd.Flags().DurationVar(&submitInterval, "interval", 2*time.Second, "poll interval with --wait")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output XLSX path (default <id>.xlsx)")
}

var submitCmd = &cobra.Command{
	Use:   "submit <file.pdf>",
	Short: "Upload a CV for review",
	Long: `Upload a PDF CV and print the review job.

Examples:
  # Submit and return immediately
  reviewctl submit cv.pdf

  # Submit and wait for the review
  reviewctl submit --wait cv.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

var getCmd = &cobra.Command{
	Use:   "get <review-id>",
	Short: "Show a review job",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var exportCmd = &cobra.Command{
	Use:   "export <review-id>",
	Short: "Download a completed review as XLSX",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	client, conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	id, err := upload(cmd.Context(), client, content)
	if err != nil {
		return err
	}
	if !submitWait {
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	}
	job, err := waitForReview(cmd.Context(), client, id, submitInterval)
	if err != nil {
		return err
	}
	return printJSON(cmd, job)
}

func runGet(cmd *cobra.Command, args []string) error {
	client, conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	job, err := fetch(cmd.Context(), client, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, job)
}

func runExport(cmd *cobra.Command, args []string) error {
	client, conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := callContext(cmd.Context())
	defer cancel()
	resp, err := client.ExportReview(ctx, wrapperspb.String(args[0]))
	if err != nil {
		return fmt.Errorf("export review: %w", err)
	}
	out := exportOut
	if out == "" {
		out = args[0] + ".xlsx"
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(out, resp.GetValue(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s)\n", out, common.FormatFileSize(int64(len(resp.GetValue()))))
	return nil
}

func upload(parent context.Context, client server.ReviewServiceClient, content []byte) (string, error) {
	ctx, cancel := callContext(parent)
	defer cancel()
	resp, err := client.Upload(ctx, wrapperspb.Bytes(content))
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	id := utils.StringField(resp, "review_id")
	if id == "" {
		return "", fmt.Errorf("upload: response has no review_id")
	}
	return id, nil
}

func fetch(parent context.Context, client server.ReviewServiceClient, id string) (*entity.ReviewJob, error) {
	ctx, cancel := callContext(parent)
	defer cancel()
	resp, err := client.GetReview(ctx, wrapperspb.String(id))
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return utils.ToReviewJob(resp)
}

func waitForReview(ctx context.Context, client server.ReviewServiceClient, id string, every time.Duration) (*entity.ReviewJob, error) {
	if every <= 0 {
		every = 2 * time.Second
	}
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		job, err := fetch(ctx, client, id)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-tick.C:
		}
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
