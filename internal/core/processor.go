package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/roastume/constants"
	"github.com/joseph-ayodele/roastume/internal/async"
	"github.com/joseph-ayodele/roastume/internal/common"
	"github.com/joseph-ayodele/roastume/internal/entity"
	"github.com/joseph-ayodele/roastume/internal/export"
	"github.com/joseph-ayodele/roastume/internal/extract"
	"github.com/joseph-ayodele/roastume/internal/llm"
	"github.com/joseph-ayodele/roastume/internal/metrics"
	"github.com/joseph-ayodele/roastume/internal/report"
	"github.com/joseph-ayodele/roastume/internal/repository"
)

// ErrJobNotCompleted is returned by ExportXLSX for jobs without a report.
var ErrJobNotCompleted = fmt.Errorf("review job not completed: %w", common.ErrFailedPrecondition)

// errStaleTransition marks a job whose status no longer allows the requested edge.
var errStaleTransition = errors.New("illegal status transition")

// Processor coordinates text extraction, review generation and parsing for
// review jobs. It is the only writer of the job repository and owns the
// background queue that runs jobs.
type Processor struct {
	logger    *slog.Logger
	jobs      repository.ReviewJobRepository
	extractor extract.TextExtractor
	generator llm.ReviewGenerator
	exporter  *export.Service
	metrics   *metrics.Metrics
	queue     *async.ProcessorQueue
	now       func() time.Time
}

func NewProcessor(
	logger *slog.Logger,
	jobs repository.ReviewJobRepository,
	extractor extract.TextExtractor,
	generator llm.ReviewGenerator,
	exporter *export.Service,
	m *metrics.Metrics,
	queueOpts ...async.Option,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	if m == nil {
		m = metrics.New(nil)
	}
	p := &Processor{
		logger:    logger,
		jobs:      jobs,
		extractor: extractor,
		generator: generator,
		exporter:  exporter,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
	p.queue = async.NewProcessorQueue(p, logger, queueOpts...)
	return p
}

// Submit creates a job under a fresh id. See CreateJob.
func (p *Processor) Submit(ctx context.Context, content []byte) (*entity.ReviewJob, error) {
	return p.CreateJob(ctx, uuid.NewString(), content)
}

// CreateJob stores a PENDING job and schedules its background execution.
// It returns without waiting for extraction or generation. Content is
// expected to be validated upstream.
func (p *Processor) CreateJob(ctx context.Context, id string, content []byte) (*entity.ReviewJob, error) {
	job := entity.NewReviewJob(id, p.now())
	if err := p.jobs.Put(ctx, job); err != nil {
		return nil, common.WrapError(err, "create review job")
	}
	p.metrics.JobsCreated.Inc()
	p.logger.Info("processor.job.created", "job_id", id, "bytes", len(content))

	err := p.queue.Submit(async.Job{ID: id, Content: content, SubmittedAt: job.CreatedAt})
	if err != nil {
		// Never leave a job PENDING with nothing scheduled to move it.
		p.logger.Warn("processor.job.rejected", "job_id", id, "err", err)
		if failed, ferr := p.fail(ctx, id, constants.ReasonShuttingDown); ferr == nil {
			return failed, nil
		}
		return nil, common.NewAppError("UNAVAILABLE", constants.ReasonShuttingDown, errors.Join(common.ErrUnavailable, err))
	}
	return job.Clone(), nil
}

// GetJob returns a snapshot of the job. It never triggers work.
func (p *Processor) GetJob(ctx context.Context, id string) (*entity.ReviewJob, error) {
	return p.jobs.Get(ctx, id)
}

// Process runs one job to a terminal status. It implements async.Handler.
// Extraction and generation failures are recorded on the job; the returned
// error only reports them to the queue's log.
func (p *Processor) Process(ctx context.Context, task async.Job) (err error) {
	ctx = common.WithJobID(ctx, task.ID)
	log := p.logger.With("job_id", task.ID)
	start := time.Now()

	if _, err := p.transition(ctx, task.ID, constants.JobStatusProcessing, nil); err != nil {
		log.Error("processor.start.failed", "err", err)
		return err
	}
	p.metrics.JobsInFlight.Inc()
	defer p.metrics.JobsInFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			log.Error("processor.panic", "panic", r)
			_, _ = p.fail(ctx, task.ID, fmt.Sprintf("internal error: %v", r))
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	// 1) extract
	t := time.Now()
	res, err := p.extractor.Extract(ctx, task.Content)
	p.observe("extract", t)
	if err != nil {
		reason := fmt.Sprintf("%s: %v", constants.ReasonExtractionFailed, err)
		if errors.Is(err, extract.ErrNoContent) {
			reason = constants.ReasonExtractionEmpty
		}
		log.Warn("processor.extract.failed", "err", err)
		_, _ = p.fail(ctx, task.ID, reason)
		return err
	}
	text := extract.Normalize(res.Text)
	if text == "" {
		log.Warn("processor.extract.empty", "method", res.Method, "pages", res.Pages)
		_, _ = p.fail(ctx, task.ID, constants.ReasonExtractionEmpty)
		return extract.ErrNoContent
	}
	log.Debug("processor.extract.ok", "method", res.Method, "pages", res.Pages, "chars", len(text))

	// 2) generate
	t = time.Now()
	raw, err := p.generator.GenerateReview(ctx, text)
	p.observe("generate", t)
	if err != nil {
		kind := llm.KindOf(err)
		if kind == "" {
			kind = llm.FailureTransport
		}
		p.metrics.GenerationFailures.WithLabelValues(string(kind)).Inc()
		log.Warn("processor.generate.failed", "kind", kind, "err", err)
		_, _ = p.fail(ctx, task.ID, fmt.Sprintf("%s: %v", constants.ReasonGenerationFailed, err))
		return err
	}

	// 3) parse
	t = time.Now()
	out := report.ParseAt(raw, p.now())
	p.observe("parse", t)
	if out.Fallback {
		p.metrics.ParseFallbacks.Inc()
		log.Warn("processor.parse.fallback", "reason", out.Reason, "raw_bytes", len(raw))
	}

	done, err := p.transition(ctx, task.ID, constants.JobStatusCompleted, func(j *entity.ReviewJob) {
		j.Result = out.Report
		j.ErrorMessage = nil
	})
	if err != nil {
		log.Error("processor.complete.failed", "err", err)
		return err
	}
	p.metrics.JobsFinished.WithLabelValues(done.Status.String()).Inc()
	log.Info("processor.job.completed",
		"overall_score", done.Result.OverallScore,
		"fallback", out.Fallback,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// ExportXLSX renders a completed job's report as a workbook.
func (p *Processor) ExportXLSX(ctx context.Context, id string) ([]byte, error) {
	job, err := p.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != constants.JobStatusCompleted || job.Result == nil {
		return nil, ErrJobNotCompleted
	}
	return p.exporter.ReportXLSX(job)
}

// Sweep evicts terminal jobs last updated more than ttl ago.
// A non-positive ttl disables eviction.
func (p *Processor) Sweep(ctx context.Context, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	n := p.jobs.DeleteFinishedBefore(ctx, p.now().Add(-ttl))
	if n > 0 {
		p.metrics.JobsEvicted.Add(float64(n))
		p.logger.Info("processor.sweep", "evicted", n, "remaining", p.jobs.Len())
	}
	return n
}

// RunJanitor calls Sweep every interval until ctx ends.
func (p *Processor) RunJanitor(ctx context.Context, ttl, interval time.Duration) error {
	if ttl <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			p.Sweep(ctx, ttl)
		}
	}
}

// InFlight reports how many submitted jobs have not finished.
func (p *Processor) InFlight() int { return p.queue.InFlight() }

// Shutdown stops accepting jobs and waits for in-flight ones or ctx.
func (p *Processor) Shutdown(ctx context.Context) error {
	return p.queue.Shutdown(ctx)
}

func (p *Processor) fail(ctx context.Context, id, reason string) (*entity.ReviewJob, error) {
	job, err := p.transition(ctx, id, constants.JobStatusFailed, func(j *entity.ReviewJob) {
		msg := reason
		j.ErrorMessage = &msg
		j.Result = nil
	})
	if err != nil {
		p.logger.Error("processor.fail.update_failed", "job_id", id, "reason", reason, "err", err)
		return nil, err
	}
	p.metrics.JobsFinished.WithLabelValues(job.Status.String()).Inc()
	p.logger.Info("processor.job.failed", "job_id", id, "reason", reason)
	return job, nil
}

func (p *Processor) transition(ctx context.Context, id string, to constants.JobStatus, mutate func(*entity.ReviewJob)) (*entity.ReviewJob, error) {
	return p.jobs.Update(ctx, id, func(j *entity.ReviewJob) error {
		if !j.Status.CanTransition(to) {
			return fmt.Errorf("%w: %s -> %s", errStaleTransition, j.Status, to)
		}
		j.Status = to
		j.UpdatedAt = p.now()
		if mutate != nil {
			mutate(j)
		}
		return nil
	})
}

func (p *Processor) observe(stage string, start time.Time) {
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
