package extract

import (
	"context"
	"errors"
	"time"
)

// ErrNoContent means the document decoded but carried no text.
var ErrNoContent = errors.New("extraction produced no content")

// TextExtractor turns raw document bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte) (Result, error)
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text"
	Duration time.Duration
	Warnings []string
}
