package runtime_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/rewatch/internal/runtime"
	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 5 * time.Second

// blockingExecutor holds every chain until release is closed.
type blockingExecutor struct {
	release  chan struct{}
	started  chan domain.Chain
	finished atomic.Int32
}

func newBlockingExecutor() *blockingExecutor {
	return &blockingExecutor{
		release: make(chan struct{}),
		started: make(chan domain.Chain, 16),
	}
}

func (e *blockingExecutor) Execute(_ context.Context, chain domain.Chain) {
	e.started <- chain
	<-e.release
	e.finished.Add(1)
}

// recordingExecutor remembers every chain it ran.
type recordingExecutor struct {
	mu     sync.Mutex
	chains []domain.Chain
}

func (e *recordingExecutor) Execute(_ context.Context, chain domain.Chain) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chains = append(e.chains, chain)
}

func (e *recordingExecutor) triggers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, c := range e.chains {
		out = append(out, c.Trigger)
	}
	return out
}

var echoChain = domain.Chain{Commands: []domain.Command{{Name: "echo", Args: []string{"{}"}}}}

func within(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("call blocked")
	}
}

func TestDispatcher_AsyncDoesNotBlock(t *testing.T) {
	exec := newBlockingExecutor()
	d := runtime.NewDispatcher(exec, runtime.ModeAsync)
	assert.True(t, d.Async())

	within(t, func() {
		for i := 0; i < 3; i++ {
			assert.NoError(t, d.Dispatch(context.Background(), echoChain.Resolve(fmt.Sprintf("f%d", i))))
		}
	})

	// All three run at the same time.
	for i := 0; i < 3; i++ {
		select {
		case <-exec.started:
		case <-time.After(waitTimeout):
			t.Fatal("chain did not start")
		}
	}

	shutdown := make(chan error, 1)
	go func() { shutdown <- d.Shutdown(context.Background()) }()

	select {
	case <-shutdown:
		t.Fatal("shutdown returned before outstanding work finished")
	case <-time.After(100 * time.Millisecond):
	}

	close(exec.release)
	select {
	case err := <-shutdown:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("shutdown never returned")
	}
	assert.Equal(t, int32(3), exec.finished.Load())
}

func TestDispatcher_SyncBlocks(t *testing.T) {
	exec := newBlockingExecutor()
	d := runtime.NewDispatcher(exec, runtime.ModeSync)
	assert.False(t, d.Async())

	dispatched := make(chan error, 1)
	go func() { dispatched <- d.Dispatch(context.Background(), echoChain.Resolve("a")) }()

	<-exec.started
	select {
	case <-dispatched:
		t.Fatal("sync dispatch returned before the chain finished")
	case <-time.After(100 * time.Millisecond):
	}

	close(exec.release)
	require.NoError(t, <-dispatched)
	assert.Equal(t, int32(1), exec.finished.Load())
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_ShutdownHonorsContext(t *testing.T) {
	exec := newBlockingExecutor()
	d := runtime.NewDispatcher(exec, runtime.ModeAsync)
	require.NoError(t, d.Dispatch(context.Background(), echoChain.Resolve("a")))
	<-exec.started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Shutdown(ctx), context.DeadlineExceeded)

	close(exec.release)
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, int32(1), exec.finished.Load())
}

func TestDispatcher_RejectsAfterShutdown(t *testing.T) {
	for _, mode := range []runtime.Mode{runtime.ModeSync, runtime.ModeAsync} {
		t.Run(mode.String(), func(t *testing.T) {
			exec := &recordingExecutor{}
			d := runtime.NewDispatcher(exec, mode)
			require.NoError(t, d.Shutdown(context.Background()))
			require.NoError(t, d.Shutdown(context.Background()))

			err := d.Dispatch(context.Background(), echoChain.Resolve("a"))
			assert.ErrorIs(t, err, domain.ErrDispatcherClosed)
			assert.Empty(t, exec.triggers())
		})
	}
}

func TestDispatcher_AsyncSurvivesCancelledContext(t *testing.T) {
	exec := newBlockingExecutor()
	d := runtime.NewDispatcher(exec, runtime.ModeAsync)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Dispatch(ctx, echoChain.Resolve("a")))
	chain := <-exec.started
	cancel()

	assert.Equal(t, "a", chain.Trigger)
	close(exec.release)
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, int32(1), exec.finished.Load())
}

func TestDispatcher_InFlightObserver(t *testing.T) {
	exec := newBlockingExecutor()
	var mu sync.Mutex
	var current, peak float64
	d := runtime.NewDispatcher(exec, runtime.ModeAsync, runtime.WithInFlightObserver(func(delta float64) {
		mu.Lock()
		defer mu.Unlock()
		current += delta
		peak = max(peak, current)
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Dispatch(context.Background(), echoChain.Resolve("a")))
	}
	for i := 0; i < 3; i++ {
		<-exec.started
	}
	close(exec.release)
	require.NoError(t, d.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, float64(0), current)
	assert.Equal(t, float64(3), peak)
}
