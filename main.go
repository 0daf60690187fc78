// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"school-activities/config"
	"school-activities/logger"
	"school-activities/metrics"
	"school-activities/server"
	"school-activities/services"
	"school-activities/websocket"
)

const (
	serviceName     = "school-activities-portal"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("main: %v", err)
		os.Exit(1)
	}
	if err := logger.InitLogger(cfg.LogDir); err != nil {
		logger.Error.Printf("main: Failed to initialise log file in %q: %v", cfg.LogDir, err)
		os.Exit(1)
	}
	logger.SetLogLevel(cfg.Environment)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error.Printf("main: %v", err)
		os.Exit(1)
	}
}

// run serves the portal until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config) error {
	recorder, metricsHandler, flushed, err := newRecorder(ctx, cfg)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(recorder)
	go hub.Run(ctx)

	router, err := server.NewRouter(cfg, server.Dependencies{
		API:      newActivityClient(cfg),
		Recorder: recorder,
		Metrics:  metricsHandler,
		Hub:      hub,
	})
	if err != nil {
		return err
	}

	var handler http.Handler = router
	if cfg.TracingEnabled {
		handler = xray.Handler(xray.NewFixedSegmentNamer(serviceName), router)
		logger.Info.Println("run: X-Ray tracing enabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info.Printf("run: Listening on %s (activities API %s, metrics %s)", srv.Addr, cfg.ActivitiesAPIURL, cfg.MetricsBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info.Println("run: Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("run: Graceful shutdown failed: %v", err)
	}

	if flushed != nil {
		select {
		case <-flushed:
		case <-shutdownCtx.Done():
			logger.Warn.Println("run: Timed out waiting for metrics flush")
		}
	}
	return nil
}

// newActivityClient builds the activities API client, traced when X-Ray is enabled.
func newActivityClient(cfg *config.Config) *services.HTTPActivityClient {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	if cfg.TracingEnabled {
		httpClient = xray.Client(httpClient)
	}
	return services.NewHTTPActivityClient(cfg.ActivitiesAPIURL, httpClient, cfg.RequestTimeout)
}

// newRecorder selects the metrics backend. For Prometheus it also returns the scrape
// handler; for CloudWatch it starts the publisher and returns a channel closed once
// the final flush after ctx cancellation is done.
func newRecorder(ctx context.Context, cfg *config.Config) (metrics.Recorder, http.Handler, <-chan struct{}, error) {
	switch cfg.MetricsBackend {
	case config.MetricsPrometheus:
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rec := metrics.NewPrometheusRecorder(reg)
		return rec, rec.Handler(), nil, nil

	case config.MetricsCloudWatch:
		client, err := metrics.NewCloudWatchClient(cfg.AWSRegion)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create CloudWatch client: %w", err)
		}
		rec := metrics.NewCloudWatchRecorder(client, cfg.CloudWatchNamespace)
		done := make(chan struct{})
		go func() {
			rec.Run(ctx)
			close(done)
		}()
		return rec, nil, done, nil

	default:
		return metrics.Nop{}, nil, nil, nil
	}
}
