package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/aretw0/rewatch/pkg/ports"
)

// State is the state of the watch loop.
type State int32

const (
	StateIdle State = iota
	StateWatching
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateWatching:
		return "watching"
	case StateStopped:
		return "stopped"
	}
	return "idle"
}

// StopReason tells why the loop left the watching state.
type StopReason string

const (
	StopTargetRemoved StopReason = "target_removed"
	StopInterrupted   StopReason = "interrupted"
	StopSourceClosed  StopReason = "source_closed"
)

// Reporter prints user-facing diagnostics.
type Reporter interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Loop consumes change events and dispatches rebuilds.
type Loop struct {
	source     ports.EventSource
	template   domain.Chain
	dispatcher ports.ChainDispatcher
	logger     *slog.Logger
	reporter   Reporter
	runOnStart bool
	onEvent    func(domain.Event)

	state atomic.Int32
}

// LoopOption configures the loop.
type LoopOption func(*Loop)

// WithLoopLogger configures the structured logger.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithReporter configures where user-facing diagnostics go.
func WithReporter(r Reporter) LoopOption {
	return func(l *Loop) {
		l.reporter = r
	}
}

// WithRunOnStart dispatches one rebuild for the watched path before watching.
func WithRunOnStart(enabled bool) LoopOption {
	return func(l *Loop) {
		l.runOnStart = enabled
	}
}

// WithEventObserver is called for every event received, before it is handled.
func WithEventObserver(fn func(domain.Event)) LoopOption {
	return func(l *Loop) {
		l.onEvent = fn
	}
}

// NewLoop creates a loop over an established source.
func NewLoop(source ports.EventSource, template domain.Chain, dispatcher ports.ChainDispatcher, opts ...LoopOption) *Loop {
	l := &Loop{
		source:     source,
		template:   template,
		dispatcher: dispatcher,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		reporter:   stderrReporter{},
		onEvent:    func(domain.Event) {},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current state.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Run watches until the target is removed, the source closes or ctx is done.
// Before returning it waits for all background rebuilds to finish.
func (l *Loop) Run(ctx context.Context) (StopReason, error) {
	if l.runOnStart {
		l.trigger(ctx, l.source.Path())
	}

	l.state.Store(int32(StateWatching))
	l.logger.Info("Watching", "path", l.source.Path(), "async", l.dispatcher.Async())

	reason := l.watch(ctx)
	l.state.Store(int32(StateStopped))
	l.logger.Info("Stopped", "reason", reason)

	if l.dispatcher.Async() {
		l.reporter.Info("Waiting for outstanding rebuilds...")
	}
	// Shutdown is not bound to ctx: a cancelled ctx is one of the ways to get here.
	if err := l.dispatcher.Shutdown(context.Background()); err != nil {
		return reason, fmt.Errorf("failed to drain rebuilds: %w", err)
	}
	return reason, nil
}

func (l *Loop) watch(ctx context.Context) StopReason {
	events := l.source.Events()
	errs := l.source.Errors()

	for {
		select {
		case <-ctx.Done():
			return StopInterrupted

		case evt, ok := <-events:
			if !ok {
				return StopSourceClosed
			}
			l.onEvent(evt)

			switch evt.Kind {
			case domain.EventWrite:
				l.trigger(ctx, evt.Path)
			case domain.EventRemove:
				l.reporter.Error("Target file removed; stopping...")
				return StopTargetRemoved
			default:
				l.logger.Debug("Event ignored", "kind", evt.Kind, "path", evt.Path)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			l.reporter.Warn("Error watching filesystem: %v", err)
			l.logger.Warn("Event source error", "err", err)
		}
	}
}

func (l *Loop) trigger(ctx context.Context, path string) {
	l.logger.Debug("Rebuild triggered", "path", path)
	if err := l.dispatcher.Dispatch(ctx, l.template.Resolve(path)); err != nil {
		l.logger.Error("Dispatch failed", "path", path, "err", err)
	}
}

type stderrReporter struct{}

func (stderrReporter) Info(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func (stderrReporter) Warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

func (stderrReporter) Error(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
