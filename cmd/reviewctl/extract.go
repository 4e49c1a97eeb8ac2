package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/roastume/internal/common"
	"github.com/joseph-ayodele/roastume/internal/extract"
)

var (
	extractMaxPages int
	extractBin      string
)

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().IntVar(&extractMaxPages, "max-pages", 0, "only extract the first N pages (0 = all)")
	extractCmd.Flags().StringVar(&extractBin, "pdftotext", "", "pdftotext binary (default from PDFTOTEXT_BIN)")
}

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Run text extraction locally and print the normalized text",
	Long: `Run the same PDF text extraction reviewd uses, without contacting the server.
Useful to check what the reviewer will actually see.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := common.LoadConfig()
	logger := common.NewLogger(cmd.ErrOrStderr(), cfg.Log)

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if !extract.LooksLikePDF(content) {
		return fmt.Errorf("%s: not a PDF", args[0])
	}

	bin := extractBin
	if bin == "" {
		bin = cfg.Extract.Pdftotext
	}
	pages := extractMaxPages
	if pages == 0 {
		pages = cfg.Extract.MaxPages
	}
	x := extract.NewPDFExtractor(extract.Config{Pdftotext: bin, MaxPages: pages}, logger)

	start := time.Now()
	res, err := x.Extract(cmd.Context(), content)
	if err != nil {
		logger.Error("text extraction failed", "file", args[0], "error", err, "duration_ms", time.Since(start).Milliseconds())
		return err
	}
	logger.Info("text extraction OK",
		"file", args[0],
		"method", res.Method,
		"pages", res.Pages,
		"warnings", len(res.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), extract.Normalize(res.Text))
	return err
}
