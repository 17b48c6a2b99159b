package ports

import (
	"context"

	"github.com/aretw0/rewatch/pkg/domain"
)

// ChainExecutor runs a resolved chain. It reports failures through hooks and
// diagnostics, never through a return value.
type ChainExecutor interface {
	Execute(ctx context.Context, chain domain.Chain)
}

// ChainDispatcher hands resolved chains to an executor.
type ChainDispatcher interface {
	// Dispatch runs the chain inline or schedules it, depending on the mode.
	Dispatch(ctx context.Context, chain domain.Chain) error
	// Shutdown waits for every scheduled chain to finish.
	Shutdown(ctx context.Context) error
	// Async reports whether dispatched chains may outlive Dispatch.
	Async() bool
}
