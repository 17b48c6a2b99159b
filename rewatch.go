package rewatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/rewatch/internal/compiler"
	"github.com/aretw0/rewatch/internal/runtime"
	"github.com/aretw0/rewatch/pkg/adapters/fsnotify"
	"github.com/aretw0/rewatch/pkg/adapters/process"
	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/aretw0/rewatch/pkg/ports"
)

// Version is overridden at build time with -ldflags "-X github.com/aretw0/rewatch.Version=...".
var Version = "0.1.0"

// StopReason tells why Run returned.
type StopReason = runtime.StopReason

const (
	StopTargetRemoved = runtime.StopTargetRemoved
	StopInterrupted   = runtime.StopInterrupted
	StopSourceClosed  = runtime.StopSourceClosed
)

// Reporter receives the user-facing status lines.
type Reporter = runtime.Reporter

// Watcher is the high-level entry point: one target, one command chain.
type Watcher struct {
	target     string
	chain      domain.Chain
	async      bool
	verbatim   bool
	runOnStart bool
	debounce   time.Duration

	source      ports.EventSource
	executor    ports.ChainExecutor
	runnerOpts  []process.RunnerOption
	hooks       domain.LifecycleHooks
	reporter    Reporter
	onEvent     func(domain.Event)
	onInFlight  func(delta float64)
	logger      *slog.Logger
	loop        *runtime.Loop
	dispatcher  *runtime.Dispatcher
	ownedSource bool
}

// Option defines a functional option for configuring the Watcher.
type Option func(*Watcher)

// WithAsync runs chains in the background instead of blocking the watch loop.
func WithAsync(enabled bool) Option {
	return func(w *Watcher) {
		w.async = enabled
	}
}

// WithVerbatim disables placeholder substitution.
func WithVerbatim(enabled bool) Option {
	return func(w *Watcher) {
		w.verbatim = enabled
	}
}

// WithRunOnStart runs the chain once before watching.
func WithRunOnStart(enabled bool) Option {
	return func(w *Watcher) {
		w.runOnStart = enabled
	}
}

// WithDebounce sets the write coalescing window of the default filesystem source.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithSource injects a custom event source, bypassing fsnotify.
func WithSource(src ports.EventSource) Option {
	return func(w *Watcher) {
		w.source = src
	}
}

// WithExecutor injects a custom chain executor, bypassing os/exec.
func WithExecutor(exec ports.ChainExecutor) Option {
	return func(w *Watcher) {
		w.executor = exec
	}
}

// WithRunnerOptions forwards options to the default process runner.
func WithRunnerOptions(opts ...process.RunnerOption) Option {
	return func(w *Watcher) {
		w.runnerOpts = append(w.runnerOpts, opts...)
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Watcher) {
		w.hooks = domain.MergeHooks(w.hooks, hooks)
	}
}

// WithReporter sets where status lines go.
func WithReporter(r Reporter) Option {
	return func(w *Watcher) {
		w.reporter = r
	}
}

// WithEventObserver is called for every event seen by the loop.
func WithEventObserver(fn func(domain.Event)) Option {
	return func(w *Watcher) {
		w.onEvent = fn
	}
}

// WithInFlightObserver is told when background chains start (+1) and finish (-1).
func WithInFlightObserver(fn func(delta float64)) Option {
	return func(w *Watcher) {
		w.onInFlight = fn
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New parses command and prepares a watch on target.
// The filesystem watch is established here so that setup failures surface before Run.
func New(target string, command []string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		target:   target,
		debounce: fsnotify.DefaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}

	chain, err := compiler.Parse(command, w.verbatim)
	if err != nil {
		return nil, err
	}
	w.chain = chain

	if w.source == nil {
		src, err := fsnotify.New(target,
			fsnotify.WithDebounce(w.debounce),
			fsnotify.WithLogger(w.logger),
		)
		if err != nil {
			return nil, err
		}
		w.source = src
		w.ownedSource = true
	}

	if w.executor == nil {
		ropts := []process.RunnerOption{
			process.WithLogger(w.logger),
			process.WithLifecycleHooks(w.hooks),
		}
		w.executor = process.NewRunner(append(ropts, w.runnerOpts...)...)
	}

	mode := runtime.ModeSync
	if w.async {
		mode = runtime.ModeAsync
	}
	dopts := []runtime.DispatcherOption{runtime.WithDispatchLogger(w.logger)}
	if w.onInFlight != nil {
		dopts = append(dopts, runtime.WithInFlightObserver(w.onInFlight))
	}
	w.dispatcher = runtime.NewDispatcher(w.executor, mode, dopts...)

	lopts := []runtime.LoopOption{
		runtime.WithLoopLogger(w.logger),
		runtime.WithRunOnStart(w.runOnStart),
	}
	if w.reporter != nil {
		lopts = append(lopts, runtime.WithReporter(w.reporter))
	}
	if w.onEvent != nil {
		lopts = append(lopts, runtime.WithEventObserver(w.onEvent))
	}
	w.loop = runtime.NewLoop(w.source, w.chain, w.dispatcher, lopts...)

	return w, nil
}

// Chain returns the parsed command template.
func (w *Watcher) Chain() domain.Chain {
	return w.chain
}

// Path returns the watched target.
func (w *Watcher) Path() string {
	return w.source.Path()
}

// Mode returns "sync" or "async".
func (w *Watcher) Mode() string {
	return w.dispatcher.Mode().String()
}

// State reports the loop state ("idle", "watching", "stopped").
func (w *Watcher) State() string {
	return w.loop.State().String()
}

// Run blocks until the target is removed or ctx is cancelled, then drains
// outstanding chains. The default filesystem source is closed on return.
func (w *Watcher) Run(ctx context.Context) (StopReason, error) {
	reason, err := w.loop.Run(ctx)
	if w.ownedSource {
		if cerr := w.source.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close watch: %w", cerr)
		}
	}
	return reason, err
}
