package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/rewatch/internal/logging"
	"github.com/aretw0/rewatch/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode, it writes to w (Stderr, to keep Stdout for the commands).
func createLogger(w io.Writer, debug bool, format logging.Format) *slog.Logger {
	if debug {
		return logging.New(w, slog.LevelDebug, format)
	}
	return logging.NewNop()
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnChainStart: func(ctx context.Context, e *domain.ChainEvent) {
			logger.Debug("Chain Start", "run_id", e.RunID, "trigger", e.Record.Trigger)
		},
		OnCommandExit: func(ctx context.Context, e *domain.CommandEvent) {
			if e.Outcome.Outcome != domain.OutcomeSuccess {
				logger.Debug("Command Exit (Failure)", "run_id", e.RunID, "command", e.Outcome.Command,
					"outcome", e.Outcome.Outcome, "exit_code", e.Outcome.ExitCode, "err", e.Outcome.Error)
			} else {
				logger.Debug("Command Exit (Success)", "run_id", e.RunID, "command", e.Outcome.Command,
					"duration", e.Outcome.Duration)
			}
		},
		OnChainDone: func(ctx context.Context, e *domain.ChainEvent) {
			logger.Debug("Chain Done", "run_id", e.RunID, "stopped", e.Record.Stopped, "duration", e.Record.Duration())
		},
	}
}
