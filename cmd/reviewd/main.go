package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/roastume/internal/async"
	"github.com/joseph-ayodele/roastume/internal/common"
	"github.com/joseph-ayodele/roastume/internal/core"
	"github.com/joseph-ayodele/roastume/internal/export"
	"github.com/joseph-ayodele/roastume/internal/extract"
	"github.com/joseph-ayodele/roastume/internal/llm/openai"
	"github.com/joseph-ayodele/roastume/internal/metrics"
	"github.com/joseph-ayodele/roastume/internal/repository"
	"github.com/joseph-ayodele/roastume/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("reviewd exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("reviewd stopped")
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	jobs := repository.NewMemoryJobRepository(logger)
	extractor := extract.NewPDFExtractor(extract.Config{
		Pdftotext: cfg.Extract.Pdftotext,
		MaxPages:  cfg.Extract.MaxPages,
	}, logger)
	generator := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	processor := core.NewProcessor(logger, jobs, extractor, generator, export.NewService(logger), m,
		async.WithMaxConcurrent(cfg.Jobs.MaxConcurrent),
		async.WithProcessTimeout(cfg.Jobs.ProcessTimeout),
	)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		return err
	}
	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(cfg.Server.MaxUploadBytes+(1<<20)),
		grpc.ChainUnaryInterceptor(server.RequestLogger(logger)),
	)
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(server.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)
	server.RegisterReviewServiceServer(grpcServer, server.NewReviewService(processor, cfg.Server.MaxUploadBytes, logger))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	metricsServer := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC serving", "addr", lis.Addr().String())
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("metrics serving", "addr", cfg.Server.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if cfg.Jobs.TTL > 0 {
			logger.Info("janitor started", "ttl", cfg.Jobs.TTL, "interval", cfg.Jobs.SweepInterval)
		}
		return processor.RunJanitor(gctx, cfg.Jobs.TTL, cfg.Jobs.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...", "in_flight", processor.InFlight())
		hs.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop taking uploads first, then let accepted jobs finish.
		stopped := make(chan struct{})
		go func() { grpcServer.GracefulStop(); close(stopped) }()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
		if err := processor.Shutdown(shutdownCtx); err != nil {
			logger.Warn("queue drain incomplete", "error", err, "abandoned", processor.InFlight())
		}
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
