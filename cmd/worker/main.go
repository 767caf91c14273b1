package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jlozanoz/normateca/internal/bootstrap"
	"github.com/jlozanoz/normateca/internal/config"
	"github.com/jlozanoz/normateca/internal/observability/logging"
	"github.com/jlozanoz/normateca/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", workerMetrics.Handler())
		slog.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := http.ListenAndServe(":"+cfg.WorkerMetricsPort, mux); err != nil && err != http.ErrServerClosed {
			slog.Error("worker metrics server error", "error", err)
		}
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSAdmittedSubject)
	err = app.Queue.SubscribeFragmentsAdmitted(ctx, func(handlerCtx context.Context, taskID string) error {
		indexCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if task, err := app.TaskUC.GetTask(indexCtx, taskID); err == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(task.CreatedAt))
		}

		workerMetrics.StartTask()
		start := time.Now()
		err := app.IndexUC.IndexSource(indexCtx, taskID)
		workerMetrics.FinishTask("worker", time.Since(start), err)
		return err
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
