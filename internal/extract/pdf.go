package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/roastume/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
	TempDir   string // "" = os.TempDir()
}

// PDFExtractor pulls the text layer out of a PDF with poppler's pdftotext.
type PDFExtractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewPDFExtractor(cfg Config, logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return NewPDFExtractorWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewPDFExtractorWithRunner is NewPDFExtractor with an injected command runner.
func NewPDFExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &PDFExtractor{cfg: cfg, runner: runner, logger: logger}
}

// LooksLikePDF reports whether content starts with the PDF magic header.
func LooksLikePDF(content []byte) bool {
	return bytes.HasPrefix(content, []byte(constants.PDFMagic))
}

func (e *PDFExtractor) Extract(ctx context.Context, content []byte) (Result, error) {
	start := time.Now()
	if len(content) == 0 {
		return Result{Method: "pdf-text"}, ErrNoContent
	}

	tmp, err := os.CreateTemp(e.cfg.TempDir, "roastume-*.pdf")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("failed to remove temp file", "path", path, "error", err)
		}
	}()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return Result{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close temp file: %w", err)
	}

	e.logger.Debug("starting pdf extraction", "path", filepath.Base(path), "bytes", len(content))
	text, pages, warns, err := e.pdfToText(ctx, path)
	res := Result{
		Text:     text,
		Pages:    pages,
		Method:   "pdf-text",
		Duration: time.Since(start),
		Warnings: warns,
	}
	if err != nil {
		return res, fmt.Errorf("pdftotext: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		e.logger.Warn("no text content extracted from pdf", "pages", pages)
		return res, ErrNoContent
	}
	return res, nil
}

func (e *PDFExtractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, "-")
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	text = string(out)
	// A form-feed \f is used as page separator by default
	pages = strings.Count(text, "\f")
	if pages == 0 && strings.TrimSpace(text) != "" {
		pages = 1
	}
	return text, pages, nil, nil
}
