package cli

import (
	"fmt"
	"time"

	"github.com/aretw0/rewatch/internal/config"
	"github.com/aretw0/rewatch/internal/logging"
	"github.com/aretw0/rewatch/pkg/adapters/fsnotify"
	"github.com/aretw0/rewatch/pkg/adapters/memory"
)

// WatchOptions holds everything the watch command needs.
type WatchOptions struct {
	Target       string
	Command      []string
	Verbatim     bool
	RunOnStart   bool
	Async        bool
	Debounce     time.Duration
	MetricsAddr  string
	HistoryRedis string
	HistorySize  int
	LogFormat    string
	Debug        bool
}

// DefaultWatchOptions returns the flag defaults.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Debounce:    fsnotify.DefaultDebounce,
		HistorySize: memory.DefaultHistorySize,
		LogFormat:   string(logging.FormatText),
	}
}

// ApplyConfig copies file values into opts for every setting the user did
// not pass explicitly. changed reports whether a flag was set.
func (o *WatchOptions) ApplyConfig(file config.File, changed func(flag string) bool) {
	if !changed("verbatim") && file.Verbatim {
		o.Verbatim = true
	}
	if !changed("do-while") && !changed("init") && file.RunOnStart {
		o.RunOnStart = true
	}
	if !changed("async") && file.Async {
		o.Async = true
	}
	if !changed("debug") && file.Debug {
		o.Debug = true
	}
	if !changed("debounce") && file.Debounce > 0 {
		o.Debounce = file.Debounce
	}
	if !changed("metrics-addr") && file.MetricsAddr != "" {
		o.MetricsAddr = file.MetricsAddr
	}
	if !changed("history-redis") && file.HistoryRedis != "" {
		o.HistoryRedis = file.HistoryRedis
	}
	if !changed("history-size") && file.HistorySize > 0 {
		o.HistorySize = file.HistorySize
	}
	if !changed("log-format") && file.LogFormat != "" {
		o.LogFormat = file.LogFormat
	}
}

// Validate rejects option combinations that cannot run.
func (o WatchOptions) Validate() error {
	if o.Target == "" {
		return fmt.Errorf("a file to watch is required")
	}
	if len(o.Command) == 0 {
		return fmt.Errorf("a command to run is required")
	}
	if o.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	if o.HistorySize <= 0 {
		return fmt.Errorf("history size must be positive")
	}
	if _, err := logging.ParseFormat(o.LogFormat); err != nil {
		return err
	}
	return nil
}
