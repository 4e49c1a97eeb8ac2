package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/roastume/constants"
	"github.com/joseph-ayodele/roastume/internal/async"
	"github.com/joseph-ayodele/roastume/internal/common"
	"github.com/joseph-ayodele/roastume/internal/entity"
	"github.com/joseph-ayodele/roastume/internal/extract"
	"github.com/joseph-ayodele/roastume/internal/llm"
	"github.com/joseph-ayodele/roastume/internal/llm/openai"
	"github.com/joseph-ayodele/roastume/internal/metrics"
	"github.com/joseph-ayodele/roastume/internal/repository"
)

type fakeExtractor struct {
	text  string
	err   error
	gate  chan struct{}
	calls int
	mu    sync.Mutex
}

func (f *fakeExtractor) Extract(ctx context.Context, content []byte) (extract.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return extract.Result{}, ctx.Err()
		}
	}
	if f.err != nil {
		return extract.Result{}, f.err
	}
	return extract.Result{Text: f.text, Pages: 1, Method: "fake"}, nil
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGenerator struct {
	out string
	err error
	got string
	mu  sync.Mutex
}

func (f *fakeGenerator) GenerateReview(_ context.Context, cvText string) (string, error) {
	f.mu.Lock()
	f.got = cvText
	f.mu.Unlock()
	return f.out, f.err
}

func (f *fakeGenerator) input() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.got
}

type panicGenerator struct{}

func (panicGenerator) GenerateReview(context.Context, string) (string, error) {
	panic("boom")
}

func newProcessor(t *testing.T, ex extract.TextExtractor, gen llm.ReviewGenerator) (*Processor, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(nil)
	p := NewProcessor(nil, repository.NewMemoryJobRepository(nil), ex, gen, nil, m)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p, m
}

func waitTerminal(t *testing.T, p *Processor, id string) *entity.ReviewJob {
	t.Helper()
	var job *entity.ReviewJob
	require.Eventually(t, func() bool {
		j, err := p.GetJob(context.Background(), id)
		if err != nil {
			return false
		}
		job = j
		return j.Status.IsTerminal()
	}, 5*time.Second, 5*time.Millisecond)
	return job
}

func TestCreateJob_ReturnsPendingWithoutWaiting(t *testing.T) {
	gate := make(chan struct{})
	ex := &fakeExtractor{text: "cv", gate: gate}
	p, _ := newProcessor(t, ex, &fakeGenerator{out: "Overall Score: 8"})

	job, err := p.CreateJob(context.Background(), "job-1", []byte("%PDF-"))
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusPending, job.Status)
	assert.Nil(t, job.Result)
	assert.Nil(t, job.ErrorMessage)

	got, err := p.GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Contains(t, []constants.JobStatus{constants.JobStatusPending, constants.JobStatusProcessing}, got.Status)

	close(gate)
	done := waitTerminal(t, p, "job-1")
	assert.Equal(t, constants.JobStatusCompleted, done.Status)
}

func TestGetJob_UnknownID(t *testing.T) {
	p, _ := newProcessor(t, &fakeExtractor{}, &fakeGenerator{})

	_, err := p.GetJob(context.Background(), "never-created")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateJob_DuplicateID(t *testing.T) {
	p, _ := newProcessor(t, &fakeExtractor{text: "cv"}, &fakeGenerator{out: "ok"})

	_, err := p.CreateJob(context.Background(), "dup", []byte("x"))
	require.NoError(t, err)
	_, err = p.CreateJob(context.Background(), "dup", []byte("x"))
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestProcess_CompletesWithReport(t *testing.T) {
	gen := &fakeGenerator{out: "Great CV.\nOverall Score: 9/10\nKeep going."}
	p, m := newProcessor(t, &fakeExtractor{text: "  Jane Doe  \n\n\n  Go developer \n"}, gen)

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	done := waitTerminal(t, p, job.ID)
	assert.Equal(t, constants.JobStatusCompleted, done.Status)
	assert.Nil(t, done.ErrorMessage)
	require.NotNil(t, done.Result)
	assert.Equal(t, 9, done.Result.OverallScore)
	assert.Len(t, done.Result.SectionReviews, 4)
	assert.Equal(t, "Jane Doe\nGo developer", gen.input())
	assert.Equal(t, done.CreatedAt, job.CreatedAt)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsFinished.WithLabelValues("COMPLETED")))
}

func TestProcess_EmptyExtractionFails(t *testing.T) {
	cases := map[string]*fakeExtractor{
		"no content error": {err: extract.ErrNoContent},
		"blank text":       {text: " \n\t\n "},
	}
	for name, ex := range cases {
		t.Run(name, func(t *testing.T) {
			gen := &fakeGenerator{out: "unused"}
			p, _ := newProcessor(t, ex, gen)

			job, err := p.Submit(context.Background(), []byte("%PDF-"))
			require.NoError(t, err)

			done := waitTerminal(t, p, job.ID)
			assert.Equal(t, constants.JobStatusFailed, done.Status)
			assert.Nil(t, done.Result)
			assert.Equal(t, constants.ReasonExtractionEmpty, done.Error())
			assert.Empty(t, gen.input(), "generation must not run")
		})
	}
}

func TestProcess_ExtractionErrorFails(t *testing.T) {
	p, _ := newProcessor(t, &fakeExtractor{err: errors.New("pdftotext exploded")}, &fakeGenerator{})

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)

	done := waitTerminal(t, p, job.ID)
	assert.Equal(t, constants.JobStatusFailed, done.Status)
	assert.Contains(t, done.Error(), constants.ReasonExtractionFailed)
	assert.Contains(t, done.Error(), "pdftotext exploded")
}

func TestProcess_GenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: &llm.GenerationError{Kind: llm.FailureTimeout, Err: context.DeadlineExceeded}}
	p, m := newProcessor(t, &fakeExtractor{text: "cv"}, gen)

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)

	done := waitTerminal(t, p, job.ID)
	assert.Equal(t, constants.JobStatusFailed, done.Status)
	assert.Nil(t, done.Result)
	assert.Contains(t, done.Error(), constants.ReasonGenerationFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationFailures.WithLabelValues("timeout")))
}

func TestProcess_UnparseableResponseStillCompletes(t *testing.T) {
	p, m := newProcessor(t, &fakeExtractor{text: "cv"}, &fakeGenerator{out: "Overall Score: 1/10"})

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)

	done := waitTerminal(t, p, job.ID)
	assert.Equal(t, constants.JobStatusCompleted, done.Status)
	require.NotNil(t, done.Result)
	assert.Equal(t, 6, done.Result.OverallScore)
	assert.Empty(t, done.Result.SectionReviews)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseFallbacks))
}

func TestProcess_PanicBecomesFailure(t *testing.T) {
	p, _ := newProcessor(t, &fakeExtractor{text: "cv"}, panicGenerator{})

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)

	done := waitTerminal(t, p, job.ID)
	assert.Equal(t, constants.JobStatusFailed, done.Status)
	assert.Contains(t, done.Error(), "boom")
}

func TestProcess_RunsOncePerJob(t *testing.T) {
	ex := &fakeExtractor{text: "cv"}
	p, _ := newProcessor(t, ex, &fakeGenerator{out: "Overall Score: 8"})

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)
	waitTerminal(t, p, job.ID)

	// A second execution of a terminal job is refused and leaves it intact.
	before, err := p.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	err = p.Process(context.Background(), async.Job{ID: job.ID, Content: []byte("%PDF-")})
	require.Error(t, err)

	after, err := p.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, ex.callCount())
}

func TestGetJob_IdempotentAfterTerminal(t *testing.T) {
	p, _ := newProcessor(t, &fakeExtractor{text: "cv"}, &fakeGenerator{out: "Overall Score: 8"})

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)
	waitTerminal(t, p, job.ID)

	var first []byte
	for i := 0; i < 5; i++ {
		j, err := p.GetJob(context.Background(), job.ID)
		require.NoError(t, err)
		b, err := json.Marshal(j)
		require.NoError(t, err)
		if first == nil {
			first = b
			continue
		}
		assert.Equal(t, first, b)
	}
}

func TestCreateJob_AfterShutdownFails(t *testing.T) {
	p, m := newProcessor(t, &fakeExtractor{text: "cv"}, &fakeGenerator{})
	require.NoError(t, p.Shutdown(context.Background()))

	job, err := p.CreateJob(context.Background(), "late", []byte("%PDF-"))
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusFailed, job.Status)
	assert.Equal(t, constants.ReasonShuttingDown, job.Error())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsFinished.WithLabelValues("FAILED")))
}

func TestShutdown_DrainsInFlightJobs(t *testing.T) {
	gate := make(chan struct{})
	p, _ := newProcessor(t, &fakeExtractor{text: "cv", gate: gate}, &fakeGenerator{out: "Overall Score: 8"})

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)
	assert.Equal(t, 1, p.InFlight())

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(gate)
	}()
	require.NoError(t, p.Shutdown(context.Background()))

	got, err := p.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusCompleted, got.Status)
}

func TestExportXLSX(t *testing.T) {
	gate := make(chan struct{})
	p, _ := newProcessor(t, &fakeExtractor{text: "cv", gate: gate}, &fakeGenerator{out: "Overall Score: 8"})

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)

	_, err = p.ExportXLSX(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrJobNotCompleted)
	assert.ErrorIs(t, err, common.ErrFailedPrecondition)

	close(gate)
	waitTerminal(t, p, job.ID)

	b, err := p.ExportXLSX(context.Background(), job.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, b)

	_, err = p.ExportXLSX(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSweep(t *testing.T) {
	p, m := newProcessor(t, &fakeExtractor{text: "cv"}, &fakeGenerator{out: "Overall Score: 8"})

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)
	waitTerminal(t, p, job.ID)

	assert.Equal(t, 0, p.Sweep(context.Background(), 0))
	assert.Equal(t, 0, p.Sweep(context.Background(), time.Hour))

	p.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	assert.Equal(t, 1, p.Sweep(context.Background(), time.Hour))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsEvicted))

	_, err = p.GetJob(context.Background(), job.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

// End to end through the real chat/completions client.

func completionServer(t *testing.T, status int, content string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, "upstream broke", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestEndToEnd_GenerationStatus500(t *testing.T) {
	url := completionServer(t, http.StatusInternalServerError, "")
	gen := openai.NewClient(openai.Config{APIKey: "k", BaseURL: url, Timeout: time.Second}, nil)
	p, _ := newProcessor(t, &fakeExtractor{text: "cv"}, gen)

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)

	done := waitTerminal(t, p, job.ID)
	assert.Equal(t, constants.JobStatusFailed, done.Status)
	assert.NotEmpty(t, done.Error())
	assert.Nil(t, done.Result)
}

func TestEndToEnd_GenerationScore3(t *testing.T) {
	url := completionServer(t, http.StatusOK, "Overall Score: 3/10 ... needs work")
	gen := openai.NewClient(openai.Config{APIKey: "k", BaseURL: url, Timeout: time.Second}, nil)
	p, _ := newProcessor(t, &fakeExtractor{text: "cv"}, gen)

	job, err := p.Submit(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)

	done := waitTerminal(t, p, job.ID)
	assert.Equal(t, constants.JobStatusCompleted, done.Status)
	require.NotNil(t, done.Result)
	assert.Equal(t, 3, done.Result.OverallScore)
}
