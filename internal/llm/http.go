package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/roastume/internal/common"
)

// maxResponseBytes caps how much of a response body we read.
const maxResponseBytes = 4 << 20

// SendJSON sends a JSON request to a full URL with optional headers and returns the raw response body.
// It does not assume any provider (OpenAI/DeepSeek/etc.). Callers decide the URL and headers.
// Failures are returned as *GenerationError.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		logger.Error("llm.http.encode_error", "req_id", reqID, "error", err)
		return nil, 0, &GenerationError{Kind: FailureTransport, Err: fmt.Errorf("encode json: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		logger.Error("llm.http.build_request_error", "req_id", reqID, "error", err)
		return nil, 0, &GenerationError{Kind: FailureTransport, Err: fmt.Errorf("build request: %w", err)}
	}

	// Default headers; allow caller overrides.
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Info("llm.http.request",
		"req_id", reqID,
		"url", url,
		"content_length", len(bs),
	)

	resp, err := client.Do(req)
	if err != nil {
		kind := FailureTransport
		if isTimeout(err) {
			kind = FailureTimeout
		}
		logger.Error("llm.http.send_error", "req_id", reqID, "kind", kind, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, &GenerationError{Kind: kind, Err: err}
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		kind := FailureTransport
		if isTimeout(err) {
			kind = FailureTimeout
		}
		logger.Error("llm.http.read_error", "req_id", reqID, "kind", kind, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, resp.StatusCode, &GenerationError{Kind: kind, StatusCode: resp.StatusCode, Err: err}
	}

	logger.Info("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, &GenerationError{
			Kind:       FailureStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("non-2xx status: %d: %s", resp.StatusCode, truncate(string(raw), 512)),
		}
	}
	return raw, resp.StatusCode, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
