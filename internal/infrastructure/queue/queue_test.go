package queue_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/domain/timer"
	"github.com/andrescamacho/solarion-go/internal/infrastructure/queue"
)

func job(id int64) completion.CompletionJob {
	return completion.CompletionJob{Ref: timer.Ref{Kind: timer.KindConstruction, ID: id}}
}

func TestSyncQueue_RunsInlineIgnoringDelay(t *testing.T) {
	var ran atomic.Int32
	q := queue.NewSyncQueue(func(ctx context.Context, j completion.CompletionJob) error {
		ran.Add(1)
		return nil
	})

	require.NoError(t, q.Enqueue(context.Background(), job(1), time.Hour))

	assert.Equal(t, int32(1), ran.Load())
	assert.Equal(t, "sync", q.Driver())
}

func TestTimerQueue_FiresAfterDelay(t *testing.T) {
	done := make(chan int64, 1)
	q := queue.NewTimerQueue(context.Background(), func(ctx context.Context, j completion.CompletionJob) error {
		done <- j.Ref.ID
		return nil
	})
	defer q.Stop()

	require.NoError(t, q.Enqueue(context.Background(), job(7), 10*time.Millisecond))

	select {
	case id := <-done:
		assert.Equal(t, int64(7), id)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not fire")
	}
}

func TestTimerQueue_StopDropsPendingJobs(t *testing.T) {
	var ran atomic.Int32
	q := queue.NewTimerQueue(context.Background(), func(ctx context.Context, j completion.CompletionJob) error {
		ran.Add(1)
		return nil
	})

	require.NoError(t, q.Enqueue(context.Background(), job(1), time.Hour))
	assert.Equal(t, 1, q.Pending())

	q.Stop()

	assert.Equal(t, 0, q.Pending())
	assert.Equal(t, int32(0), ran.Load())
	assert.Error(t, q.Enqueue(context.Background(), job(2), 0))
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	_, err := queue.New(context.Background(), "redis", nil)
	assert.Error(t, err)
}
