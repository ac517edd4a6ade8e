package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskTypeRecord is the asynq task type carrying one audit event.
const TaskTypeRecord = "audit:record"

// Sink consumes engine-emitted audit events. Implementations are
// best-effort: a failed emit is logged and never propagated to the caller,
// so a money movement is never rolled back over its audit trail.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

// Enqueuer is the slice of asynq.Client the recorder needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Recorder dispatches audit events onto the Redis-backed queue. The worker
// drains the queue into audit_logs, keeping the write off the ledger's
// transaction path.
type Recorder struct {
	client Enqueuer
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder constructs a Recorder.
func NewRecorder(client Enqueuer, logger *slog.Logger) *Recorder {
	return &Recorder{client: client, logger: logger, now: time.Now}
}

// Record enqueues the event. Failures are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	if r == nil || r.client == nil {
		return
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = r.now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		r.logger.Error("audit marshal", slog.Any("error", err), slog.String("action", ev.Action))
		return
	}
	task := asynq.NewTask(TaskTypeRecord, payload, asynq.MaxRetry(5))
	if _, err := r.client.EnqueueContext(ctx, task); err != nil {
		// Audit is a best-effort side channel; losing an event under queue
		// outage is an accepted trade-off.
		r.logger.Error("audit enqueue", slog.Any("error", err),
			slog.String("entity", ev.Entity), slog.String("action", ev.Action))
	}
}

// HandleRecordTask persists a queued audit event. Wired into the asynq
// worker mux.
func HandleRecordTask(repo RepositoryPort, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var ev Event
		if err := json.Unmarshal(t.Payload(), &ev); err != nil {
			logger.Error("audit payload decode", slog.Any("error", err))
			return asynq.SkipRetry
		}
		if err := repo.Insert(ctx, ev); err != nil {
			logger.Error("audit insert", slog.Any("error", err), slog.String("action", ev.Action))
			return err
		}
		return nil
	}
}
