package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/rewatch"
	"github.com/aretw0/rewatch/internal/logging"
	"github.com/aretw0/rewatch/internal/presentation/tui"
	httpAdapter "github.com/aretw0/rewatch/pkg/adapters/http"
	"github.com/aretw0/rewatch/pkg/adapters/memory"
	"github.com/aretw0/rewatch/pkg/adapters/process"
	redisAdapter "github.com/aretw0/rewatch/pkg/adapters/redis"
	"github.com/aretw0/rewatch/pkg/observability"
	"github.com/aretw0/rewatch/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const (
	redisPingTimeout    = 3 * time.Second
	serverShutdownGrace = 5 * time.Second
)

// RunWatch watches opts.Target and re-runs opts.Command until the target is
// removed or ctx is cancelled. A nil error means a graceful stop.
func RunWatch(ctx context.Context, opts WatchOptions, console *tui.Console) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	format, _ := logging.ParseFormat(opts.LogFormat)
	logger := createLogger(console, opts.Debug, format)

	history, closeHistory, err := openHistory(ctx, opts)
	if err != nil {
		return err
	}
	defer closeHistory()

	mode := "sync"
	if opts.Async {
		mode = "async"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg, mode)

	// Listen before watching so a busy port fails fast.
	var ln net.Listener
	if opts.MetricsAddr != "" {
		ln, err = net.Listen("tcp", opts.MetricsAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", opts.MetricsAddr, err)
		}
	}

	w, err := rewatch.New(opts.Target, opts.Command,
		rewatch.WithAsync(opts.Async),
		rewatch.WithVerbatim(opts.Verbatim),
		rewatch.WithRunOnStart(opts.RunOnStart),
		rewatch.WithDebounce(opts.Debounce),
		rewatch.WithLogger(logger),
		rewatch.WithReporter(console),
		rewatch.WithRunnerOptions(process.WithDiagnostics(console)),
		rewatch.WithLifecycleHooks(metrics.Hooks()),
		rewatch.WithLifecycleHooks(observability.HistoryHooks(history, logger)),
		rewatch.WithLifecycleHooks(createDebugHooks(logger)),
		rewatch.WithEventObserver(metrics.ObserveEvent),
		rewatch.WithInFlightObserver(metrics.ObserveInFlight),
	)
	if err != nil {
		if ln != nil {
			_ = ln.Close()
		}
		return err
	}

	console.Banner(rewatch.Version, w.Path(), w.Mode())
	logger.Info("Starting Watcher", "path", w.Path(), "mode", w.Mode(), "commands", w.Chain().Len())

	var srv *http.Server
	if ln != nil {
		srv = &http.Server{
			Handler: httpAdapter.NewHandler(&httpAdapter.Server{
				Gatherer: reg,
				History:  history,
				Status:   w,
				Version:  rewatch.Version,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if srv != nil {
		logger.Info("Serving status", "addr", ln.Addr().String())
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		reason, err := w.Run(gctx)
		logger.Info("Watcher stopped", "reason", reason)
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverShutdownGrace)
			defer cancel()
			if serr := srv.Shutdown(shutdownCtx); serr != nil {
				logger.Warn("Status server shutdown failed", "err", serr)
			}
		}
		return err
	})

	return g.Wait()
}

// openHistory selects the run history backend: Redis when configured, otherwise memory.
func openHistory(ctx context.Context, opts WatchOptions) (ports.HistoryStore, func(), error) {
	if opts.HistoryRedis == "" {
		return memory.NewStore(opts.HistorySize), func() {}, nil
	}

	store, err := redisAdapter.New(opts.HistoryRedis, redisAdapter.WithSize(opts.HistorySize))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid history redis url: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("history redis unreachable: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}
