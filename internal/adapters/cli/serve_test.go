package cli

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminCommands "github.com/andrescamacho/solarion-go/internal/application/admin/commands"
	"github.com/andrescamacho/solarion-go/internal/application/common"
	"github.com/andrescamacho/solarion-go/internal/application/completion"
	"github.com/andrescamacho/solarion-go/internal/application/mediator"
)

// slowSweepMediator blocks the first sweep until release is closed and
// records whether that sweep's context was cancelled by then
type slowSweepMediator struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once

	mu       sync.Mutex
	firstErr error
	finished bool
}

func (m *slowSweepMediator) Send(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	first := false
	m.once.Do(func() {
		first = true
		close(m.started)
	})
	<-m.release
	if first {
		m.mu.Lock()
		m.firstErr = ctx.Err()
		m.finished = true
		m.mu.Unlock()
	}
	return &adminCommands.RunSweepResponse{Report: &completion.SweepReport{LockAcquired: true}}, nil
}

func (m *slowSweepMediator) Register(reflect.Type, mediator.RequestHandler) error { return nil }

func (m *slowSweepMediator) RegisterMiddleware(mediator.Middleware) {}

func TestStartSweeps_StopWaitsForRunningSweepWithoutCancellingIt(t *testing.T) {
	m := &slowSweepMediator{started: make(chan struct{}), release: make(chan struct{})}
	ctx, shutdown := context.WithCancel(context.Background())
	defer shutdown()

	stop := startSweeps(ctx, m, time.Millisecond, common.LoggerFromContext(ctx))

	select {
	case <-m.started:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep never started")
	}

	// SIGTERM arrives mid-sweep
	shutdown()

	stopped := make(chan struct{})
	go func() {
		stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while a sweep was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(m.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return after the sweep finished")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	require.True(t, m.finished)
	assert.NoError(t, m.firstErr, "running sweep must not see the shutdown")
}

func TestStartSweeps_StopWithoutShutdownDoesNotHang(t *testing.T) {
	m := &slowSweepMediator{started: make(chan struct{}), release: make(chan struct{})}
	close(m.release)

	stop := startSweeps(context.Background(), m, time.Hour, common.LoggerFromContext(context.Background()))

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop hung with no sweep in flight")
	}
}
