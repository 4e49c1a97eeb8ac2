package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Submit once Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one background execution request.
type Job struct {
	ID          string
	Content     []byte
	SubmittedAt time.Time
}

// Handler runs a single job. Errors are logged by the queue; handlers own
// any state changes that should follow a failure.
type Handler interface {
	Process(ctx context.Context, job Job) error
}

type Queue interface {
	Submit(job Job) error
	Shutdown(ctx context.Context) error
}
