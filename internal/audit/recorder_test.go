package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

type fakeAuditRepo struct {
	inserted []Event
	err      error
}

func (f *fakeAuditRepo) Insert(ctx context.Context, ev Event) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, ev)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, filter Filter, limit, offset int) ([]Log, error) {
	return nil, nil
}

func (f *fakeAuditRepo) Count(ctx context.Context, filter Filter) (int, error) {
	return 0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorderEnqueuesEvent(t *testing.T) {
	client := &fakeEnqueuer{}
	rec := NewRecorder(client, discardLogger())

	rec.Record(context.Background(), Event{
		Entity:   "Transaction",
		EntityID: 7,
		Action:   "DEPOSIT",
		ActorID:  1,
	})

	require.Len(t, client.tasks, 1)
	task := client.tasks[0]
	require.Equal(t, TaskTypeRecord, task.Type())

	var ev Event
	require.NoError(t, json.Unmarshal(task.Payload(), &ev))
	require.Equal(t, "Transaction", ev.Entity)
	require.Equal(t, int64(7), ev.EntityID)
	require.NotEqual(t, uuid.Nil, ev.ID)
	require.False(t, ev.OccurredAt.IsZero())
}

func TestRecorderKeepsCallerTimestamp(t *testing.T) {
	client := &fakeEnqueuer{}
	rec := NewRecorder(client, discardLogger())

	when := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	rec.Record(context.Background(), Event{Action: "DEPOSIT", OccurredAt: when})

	var ev Event
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &ev))
	require.True(t, ev.OccurredAt.Equal(when))
}

func TestRecorderSwallowsEnqueueFailure(t *testing.T) {
	rec := NewRecorder(&fakeEnqueuer{err: errors.New("redis down")}, discardLogger())

	// Must not panic or surface the error.
	rec.Record(context.Background(), Event{Action: "DEPOSIT"})
}

func TestRecorderNilClientIsNoop(t *testing.T) {
	rec := NewRecorder(nil, discardLogger())
	rec.Record(context.Background(), Event{Action: "DEPOSIT"})
}

func TestHandleRecordTaskPersists(t *testing.T) {
	repo := &fakeAuditRepo{}
	handler := HandleRecordTask(repo, discardLogger())

	ev := Event{ID: uuid.New(), Entity: "Transaction", EntityID: 3, Action: "WITHDRAWAL", OccurredAt: time.Now()}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), asynq.NewTask(TaskTypeRecord, payload)))
	require.Len(t, repo.inserted, 1)
	require.Equal(t, ev.ID, repo.inserted[0].ID)
	require.Equal(t, "WITHDRAWAL", repo.inserted[0].Action)
}

func TestHandleRecordTaskSkipsRetryOnBadPayload(t *testing.T) {
	handler := HandleRecordTask(&fakeAuditRepo{}, discardLogger())

	err := handler(context.Background(), asynq.NewTask(TaskTypeRecord, []byte("{broken")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleRecordTaskReturnsInsertErrorForRetry(t *testing.T) {
	handler := HandleRecordTask(&fakeAuditRepo{err: errors.New("db down")}, discardLogger())

	ev, err := json.Marshal(Event{Action: "DEPOSIT"})
	require.NoError(t, err)
	err = handler(context.Background(), asynq.NewTask(TaskTypeRecord, ev))
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}
