// Package jobs hosts the background worker that drains queued work, most
// importantly audit events, off the ledger's request path.
package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/meridianbank/meridian/internal/audit"
)

// QueueDefault is the default queue name for background jobs.
const QueueDefault = "default"

// Worker wraps the Asynq server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	AuditRepo audit.RepositoryPort
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) *Worker {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(audit.TaskTypeRecord, audit.HandleRecordTask(cfg.AuditRepo, cfg.Logger))
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}
}

// Run starts processing until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.logger.Info("worker shutting down")
	w.server.Shutdown()
	return nil
}
