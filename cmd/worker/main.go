package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ametelin/docinsight/internal/bootstrap"
	"github.com/ametelin/docinsight/internal/config"
	"github.com/ametelin/docinsight/internal/observability/logging"
	"github.com/ametelin/docinsight/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	log := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log, nil)
	if err != nil {
		log.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	go serveMetrics(cfg.WorkerMetricsPort, workerMetrics, log)

	log.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if doc, readErr := app.Repo.GetByID(processCtx, documentID); readErr == nil {
			workerMetrics.ObserveQueueLag(time.Since(doc.CreatedAt))
		}

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := app.ProcessUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument(time.Since(start), processErr)

		if processErr == nil {
			if doc, readErr := app.Repo.GetByID(processCtx, documentID); readErr == nil {
				workerMetrics.ObserveDocumentShape(doc.ChunkCount, doc.VisualCount)
			}
		}
		return processErr
	})
	if err != nil {
		log.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}

func serveMetrics(port string, m *metrics.WorkerMetrics, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Warn("worker_metrics_server_failed", "error", err)
	}
}
