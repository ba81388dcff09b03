package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("recompute", func(context.Context, Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "1", Type: "recompute"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueueProcessesJob(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("recompute", func(_ context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1", Type: "recompute", Payload: "2024-2025"}))

	select {
	case job := <-done:
		assert.Equal(t, "job-1", job.ID)
		assert.Equal(t, "2024-2025", job.Payload)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var calls int32
	gaveUp := make(chan error, 1)
	q := NewQueue("recompute", func(context.Context, Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, QueueConfig{
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
		OnGiveUp: func(_ context.Context, _ Job, err error) {
			gaveUp <- err
		},
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-2", Type: "recompute"}))

	select {
	case err := <-gaveUp:
		assert.EqualError(t, err, "boom")
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("give-up hook not invoked")
	}
}
