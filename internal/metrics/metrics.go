package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the review pipeline.
//
// Metrics:
//   - roastume_jobs_created_total - jobs accepted by CreateJob
//   - roastume_jobs_finished_total{status} - jobs reaching COMPLETED or FAILED
//   - roastume_jobs_in_flight - background executions currently running
//   - roastume_stage_duration_seconds{stage} - extract/generate/parse latency
//   - roastume_generation_failures_total{kind} - failed generation calls by kind
//   - roastume_parse_fallbacks_total - reports replaced by the fallback report
//   - roastume_jobs_evicted_total - terminal jobs removed by the janitor
type Metrics struct {
	JobsCreated        prometheus.Counter
	JobsFinished       *prometheus.CounterVec
	JobsInFlight       prometheus.Gauge
	StageDuration      *prometheus.HistogramVec
	GenerationFailures *prometheus.CounterVec
	ParseFallbacks     prometheus.Counter
	JobsEvicted        prometheus.Counter
}

// New registers the pipeline metrics on reg. A nil reg yields unregistered
// collectors, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		JobsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "roastume_jobs_created_total",
			Help: "Total number of review jobs accepted",
		}),
		JobsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roastume_jobs_finished_total",
			Help: "Total number of review jobs reaching a terminal status",
		}, []string{"status"}),
		JobsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "roastume_jobs_in_flight",
			Help: "Number of review jobs currently executing",
		}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roastume_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"stage"}),
		GenerationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roastume_generation_failures_total",
			Help: "Total number of failed review generation calls",
		}, []string{"kind"}),
		ParseFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "roastume_parse_fallbacks_total",
			Help: "Total number of reports replaced by the fallback report",
		}),
		JobsEvicted: f.NewCounter(prometheus.CounterOpts{
			Name: "roastume_jobs_evicted_total",
			Help: "Total number of terminal review jobs evicted",
		}),
	}
}
