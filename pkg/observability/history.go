package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/aretw0/rewatch/pkg/ports"
)

const historyWriteTimeout = 5 * time.Second

// HistoryHooks appends each finished run to store. Store failures are logged
// and never affect the rebuild.
func HistoryHooks(store ports.HistoryStore, logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnChainDone: func(ctx context.Context, e *domain.ChainEvent) {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
			defer cancel()

			if err := store.Append(ctx, *e.Record); err != nil {
				logger.Warn("Failed to record run", "run_id", e.RunID, "err", err)
			}
		},
	}
}
