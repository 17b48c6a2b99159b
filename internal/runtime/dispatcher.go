package runtime

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/aretw0/rewatch/pkg/ports"
)

// Mode selects how the dispatcher runs chains.
type Mode int

const (
	// ModeSync runs each chain inline; the caller waits for it.
	ModeSync Mode = iota
	// ModeAsync runs each chain on its own goroutine and returns at once.
	ModeAsync
)

func (m Mode) String() string {
	if m == ModeAsync {
		return "async"
	}
	return "sync"
}

// PendingWork is the handle of one chain running in the background.
type PendingWork struct {
	done chan struct{}
}

func startWork(fn func()) *PendingWork {
	w := &PendingWork{done: make(chan struct{})}
	go func() {
		defer close(w.done)
		fn()
	}()
	return w
}

// Wait blocks until the chain has finished.
func (w *PendingWork) Wait() {
	<-w.done
}

// Done is closed when the chain has finished.
func (w *PendingWork) Done() <-chan struct{} {
	return w.done
}

// Dispatcher implements ports.ChainDispatcher.
//
// In async mode every dispatched chain is started immediately and its handle
// is queued for a single reaper goroutine, which joins handles one at a time
// in submission order. Chains still run concurrently: the reaper only bounds
// how many joins are outstanding, not how many chains are running.
type Dispatcher struct {
	executor ports.ChainExecutor
	mode     Mode
	logger   *slog.Logger
	inFlight func(delta float64)

	mu      sync.Mutex
	closed  bool
	mailbox *mailbox
	reaped  chan struct{}
}

// DispatcherOption configures the dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger configures the structured logger.
func WithDispatchLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithInFlightObserver is called with +1 when a chain starts and -1 when it ends.
func WithInFlightObserver(fn func(delta float64)) DispatcherOption {
	return func(d *Dispatcher) {
		d.inFlight = fn
	}
}

// NewDispatcher creates a dispatcher. In async mode it starts the reaper.
func NewDispatcher(executor ports.ChainExecutor, mode Mode, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		executor: executor,
		mode:     mode,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		inFlight: func(float64) {},
	}
	for _, opt := range opts {
		opt(d)
	}

	if mode == ModeAsync {
		d.mailbox = newMailbox()
		d.reaped = make(chan struct{})
		go d.reap()
	}
	return d
}

// Mode returns the dispatch mode.
func (d *Dispatcher) Mode() Mode {
	return d.mode
}

// Async reports whether the dispatcher runs chains in the background.
func (d *Dispatcher) Async() bool {
	return d.mode == ModeAsync
}

// Dispatch runs the chain according to the mode. In sync mode it returns
// once the chain has finished; in async mode it returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, chain domain.Chain) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return domain.ErrDispatcherClosed
	}

	if d.mode == ModeSync {
		d.mu.Unlock()
		d.run(ctx, chain)
		return nil
	}
	defer d.mu.Unlock()

	// The chain outlives the event that triggered it, including a shutdown.
	runCtx := context.WithoutCancel(ctx)
	work := startWork(func() {
		d.run(runCtx, chain)
	})
	d.mailbox.send(newWork{work: work})
	d.logger.Debug("Rebuild dispatched", "trigger", chain.Trigger)
	return nil
}

func (d *Dispatcher) run(ctx context.Context, chain domain.Chain) {
	d.inFlight(1)
	defer d.inFlight(-1)
	d.executor.Execute(ctx, chain)
}

// Shutdown stops accepting work and waits until every chain dispatched so
// far has finished, or ctx is done. It is a no-op in sync mode.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		if d.mode == ModeAsync {
			d.mailbox.send(drain{})
			d.mailbox.close()
		}
	}
	d.mu.Unlock()

	if d.mode == ModeSync {
		return nil
	}

	select {
	case <-d.reaped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) reap() {
	defer close(d.reaped)
	for msg := range d.mailbox.receive() {
		switch m := msg.(type) {
		case newWork:
			m.work.Wait()
			d.logger.Debug("Rebuild reaped")
		case drain:
			d.logger.Debug("Reaper drained")
			return
		}
	}
}
