package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/rewatch/internal/runtime"
	"github.com/aretw0/rewatch/pkg/adapters/memory"
	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureReporter struct {
	mu    sync.Mutex
	lines []string
}

func (r *captureReporter) add(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, level+": "+fmt.Sprintf(format, args...))
}

func (r *captureReporter) Info(format string, args ...any)  { r.add("info", format, args...) }
func (r *captureReporter) Warn(format string, args ...any)  { r.add("warn", format, args...) }
func (r *captureReporter) Error(format string, args ...any) { r.add("error", format, args...) }

func (r *captureReporter) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

type runResult struct {
	reason runtime.StopReason
	err    error
}

func runLoop(ctx context.Context, loop *runtime.Loop) <-chan runResult {
	out := make(chan runResult, 1)
	go func() {
		reason, err := loop.Run(ctx)
		out <- runResult{reason, err}
	}()
	return out
}

func await(t *testing.T, ch <-chan runResult) runResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(waitTimeout):
		t.Fatal("loop did not stop")
	}
	return runResult{}
}

func TestLoop_RemoveStopsAndDropsQueuedWrites(t *testing.T) {
	src := memory.NewSource("main.c", 8)
	exec := &recordingExecutor{}
	rep := &captureReporter{}
	loop := runtime.NewLoop(src, echoChain, runtime.NewDispatcher(exec, runtime.ModeSync), runtime.WithReporter(rep))
	assert.Equal(t, runtime.StateIdle, loop.State())

	require.NoError(t, src.Write())
	require.NoError(t, src.Push(domain.Event{Kind: domain.EventOther, Path: "main.c"}))
	require.NoError(t, src.Write())
	require.NoError(t, src.Remove())
	require.NoError(t, src.Write())
	require.NoError(t, src.Write())

	res := await(t, runLoop(context.Background(), loop))
	require.NoError(t, res.err)
	assert.Equal(t, runtime.StopTargetRemoved, res.reason)
	assert.Equal(t, runtime.StateStopped, loop.State())
	assert.Equal(t, []string{"main.c", "main.c"}, exec.triggers())
	assert.Contains(t, rep.all(), "error: Target file removed; stopping...")
}

func TestLoop_SubstitutesTriggerPath(t *testing.T) {
	src := memory.NewSource("src/app.go", 2)
	exec := &recordingExecutor{}
	loop := runtime.NewLoop(src, echoChain, runtime.NewDispatcher(exec, runtime.ModeSync), runtime.WithReporter(&captureReporter{}))

	require.NoError(t, src.Write())
	require.NoError(t, src.Remove())
	await(t, runLoop(context.Background(), loop))

	require.Len(t, exec.chains, 1)
	assert.Equal(t, []string{"src/app.go"}, exec.chains[0].Commands[0].Args)
	assert.Equal(t, []string{"{}"}, echoChain.Commands[0].Args)
}

func TestLoop_SourceErrorsAreNotFatal(t *testing.T) {
	src := memory.NewSource("main.c", 4)
	exec := &recordingExecutor{}
	rep := &captureReporter{}
	loop := runtime.NewLoop(src, echoChain, runtime.NewDispatcher(exec, runtime.ModeSync), runtime.WithReporter(rep))

	results := runLoop(context.Background(), loop)
	require.NoError(t, src.Fail(errors.New("inotify queue overflow")))
	require.Eventually(t, func() bool { return len(rep.all()) == 1 }, waitTimeout, 10*time.Millisecond)
	assert.Equal(t, runtime.StateWatching, loop.State())

	require.NoError(t, src.Write())
	require.NoError(t, src.Remove())

	res := await(t, results)
	assert.Equal(t, runtime.StopTargetRemoved, res.reason)
	assert.Equal(t, []string{"main.c"}, exec.triggers())
	assert.Equal(t, "warn: Error watching filesystem: inotify queue overflow", rep.all()[0])
}

func TestLoop_RunOnStart(t *testing.T) {
	src := memory.NewSource("Makefile", 2)
	exec := &recordingExecutor{}
	loop := runtime.NewLoop(src, echoChain, runtime.NewDispatcher(exec, runtime.ModeSync),
		runtime.WithRunOnStart(true),
		runtime.WithReporter(&captureReporter{}),
	)

	require.NoError(t, src.Remove())
	res := await(t, runLoop(context.Background(), loop))

	assert.Equal(t, runtime.StopTargetRemoved, res.reason)
	assert.Equal(t, []string{"Makefile"}, exec.triggers())
}

func TestLoop_Interrupted(t *testing.T) {
	src := memory.NewSource("main.c", 1)
	loop := runtime.NewLoop(src, echoChain, runtime.NewDispatcher(&recordingExecutor{}, runtime.ModeSync))

	ctx, cancel := context.WithCancel(context.Background())
	results := runLoop(ctx, loop)
	require.Eventually(t, func() bool { return loop.State() == runtime.StateWatching }, waitTimeout, 10*time.Millisecond)
	cancel()

	res := await(t, results)
	require.NoError(t, res.err)
	assert.Equal(t, runtime.StopInterrupted, res.reason)
}

func TestLoop_SourceClosed(t *testing.T) {
	src := memory.NewSource("main.c", 1)
	loop := runtime.NewLoop(src, echoChain, runtime.NewDispatcher(&recordingExecutor{}, runtime.ModeSync))
	require.NoError(t, src.Close())

	res := await(t, runLoop(context.Background(), loop))
	assert.Equal(t, runtime.StopSourceClosed, res.reason)
}

func TestLoop_AsyncDrainsBeforeReturning(t *testing.T) {
	src := memory.NewSource("main.c", 8)
	exec := newBlockingExecutor()
	rep := &captureReporter{}
	var events []domain.EventKind
	loop := runtime.NewLoop(src, echoChain, runtime.NewDispatcher(exec, runtime.ModeAsync),
		runtime.WithReporter(rep),
		runtime.WithEventObserver(func(evt domain.Event) { events = append(events, evt.Kind) }),
	)

	for i := 0; i < 3; i++ {
		require.NoError(t, src.Write())
	}
	require.NoError(t, src.Remove())
	results := runLoop(context.Background(), loop)

	// The loop got through all writes without waiting for any rebuild.
	for i := 0; i < 3; i++ {
		select {
		case <-exec.started:
		case <-time.After(waitTimeout):
			t.Fatal("rebuild was not started")
		}
	}
	require.Eventually(t, func() bool { return loop.State() == runtime.StateStopped }, waitTimeout, 10*time.Millisecond)

	select {
	case <-results:
		t.Fatal("loop returned while rebuilds were still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(exec.release)
	res := await(t, results)
	require.NoError(t, res.err)
	assert.Equal(t, runtime.StopTargetRemoved, res.reason)
	assert.Equal(t, int32(3), exec.finished.Load())
	assert.Contains(t, rep.all(), "info: Waiting for outstanding rebuilds...")
	assert.Equal(t, []domain.EventKind{domain.EventWrite, domain.EventWrite, domain.EventWrite, domain.EventRemove}, events)
}
