package llm

import (
	"context"
	"errors"
	"fmt"
)

// ReviewGenerator sends normalized CV text to a text-generation service
// and returns the raw review prose.
type ReviewGenerator interface {
	GenerateReview(ctx context.Context, cvText string) (string, error)
}

// FailureKind classifies a failed generation call. Callers treat every kind
// the same way; the kind only feeds logs and metrics.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureTimeout   FailureKind = "timeout"
	FailureStatus    FailureKind = "status"
	FailureDecode    FailureKind = "decode"
)

// GenerationError is returned by ReviewGenerator implementations.
type GenerationError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation %s failure (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation %s failure: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err, or "" if err is not a GenerationError.
func KindOf(err error) FailureKind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
