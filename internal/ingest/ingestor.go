package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/joseph-ayodele/roastume/constants"
	"github.com/joseph-ayodele/roastume/internal/common"
)

// Submitter hands a PDF to the review service and returns the review id.
type Submitter interface {
	Submit(ctx context.Context, path string, content []byte) (string, error)
}

type SubmitterFunc func(ctx context.Context, path string, content []byte) (string, error)

func (f SubmitterFunc) Submit(ctx context.Context, path string, content []byte) (string, error) {
	return f(ctx, path, content)
}

// Result describes one ingested file.
type Result struct {
	Path         string
	ReviewID     string
	HashHex      string
	Deduplicated bool
}

// Ingestor reads CV files from disk and submits them for review.
// Identical content is submitted once per Ingestor.
type Ingestor struct {
	sub      Submitter
	maxBytes int
	logger   *slog.Logger

	mu   sync.Mutex
	seen map[string]string // content hash -> review id
}

func NewIngestor(sub Submitter, maxBytes int, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = constants.MaxUploadBytes
	}
	return &Ingestor{sub: sub, maxBytes: maxBytes, logger: logger, seen: map[string]string{}}
}

// IngestPath validates and submits the file at path.
func (i *Ingestor) IngestPath(ctx context.Context, path string) (Result, error) {
	out := Result{Path: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	out.Path = abs
	if !AllowedExt(filepath.Ext(abs)) {
		return out, fmt.Errorf("%s: %w", constants.MsgInvalidType, common.ErrInvalidInput)
	}

	f, err := os.Open(abs)
	if err != nil {
		return out, err
	}
	defer f.Close()

	// Read one byte past the cap so oversized files are detected without loading them whole.
	content, err := io.ReadAll(io.LimitReader(f, int64(i.maxBytes)+1))
	if err != nil {
		return out, fmt.Errorf("read %s: %w", abs, err)
	}
	v := common.NewValidator().
		Field("file", content, common.Required, common.MaxBytes(i.maxBytes), common.PDFContent)
	if v.HasErrors() {
		return out, fmt.Errorf("%s: %w", v.ErrorMessage(), common.ErrInvalidInput)
	}

	sum := sha256.Sum256(content)
	out.HashHex = hex.EncodeToString(sum[:])

	i.mu.Lock()
	if id, ok := i.seen[out.HashHex]; ok {
		i.mu.Unlock()
		out.ReviewID = id
		out.Deduplicated = true
		i.logger.Info("ingest.dedup", "path", abs, "review_id", id)
		return out, nil
	}
	i.mu.Unlock()

	id, err := i.sub.Submit(ctx, abs, bytes.Clone(content))
	if err != nil {
		return out, fmt.Errorf("submit %s: %w", abs, err)
	}
	out.ReviewID = id

	i.mu.Lock()
	i.seen[out.HashHex] = id
	i.mu.Unlock()

	i.logger.Info("ingest.submitted", "path", abs, "review_id", id, "bytes", len(content))
	return out, nil
}

// Watch submits every matching file the watcher reports until ctx ends.
// Per-file failures are logged and do not stop the watch.
func (i *Ingestor) Watch(ctx context.Context, cfg WatchConfig, onResult func(Result, error)) error {
	events, errs, err := StartWatcher(ctx, cfg)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-events:
			if !ok {
				return nil
			}
			res, err := i.IngestPath(ctx, path)
			if err != nil {
				i.logger.Warn("ingest.watch.failed", "path", path, "error", err)
			}
			if onResult != nil {
				onResult(res, err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			i.logger.Warn("ingest.watch.error", "error", err)
		}
	}
}
