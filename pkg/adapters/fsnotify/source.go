// Package fsnotify adapts github.com/fsnotify/fsnotify into a debounced
// ports.EventSource for a single path.
package fsnotify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/rewatch/pkg/domain"
	backend "github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used to coalesce bursts of writes.
const DefaultDebounce = 500 * time.Millisecond

// Source watches one path and emits debounced events.
//
// A burst of writes becomes a single EventWrite, delivered once no write has
// been seen for the debounce interval. A remove (or a rename away from the
// path) drops any pending write and is delivered immediately.
type Source struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	watcher *backend.Watcher
	events  chan domain.Event
	errs    chan error

	done      chan struct{}
	exited    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Option configures the source.
type Option func(*Source)

// WithDebounce sets the quiet period. Zero disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		s.debounce = d
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// New establishes a watch on path. Failures wrap domain.ErrWatchSetup.
func New(path string, opts ...Option) (*Source, error) {
	s := &Source{
		path:     path,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		events:   make(chan domain.Event),
		errs:     make(chan error),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	watcher, err := backend.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize watcher: %w", domain.ErrWatchSetup, err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrWatchSetup, path, err)
	}
	s.watcher = watcher

	go s.loop()
	s.logger.Debug("Watch established", "path", path, "debounce", s.debounce)
	return s, nil
}

// Path returns the watched path.
func (s *Source) Path() string {
	return s.path
}

// Events returns the debounced event stream. It is closed by Close.
func (s *Source) Events() <-chan domain.Event {
	return s.events
}

// Errors returns errors reported by the underlying watcher.
func (s *Source) Errors() <-chan error {
	return s.errs
}

// Close stops watching. Pending writes are discarded.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.watcher.Close()
		<-s.exited
	})
	return s.closeErr
}

func (s *Source) loop() {
	defer close(s.exited)
	defer close(s.errs)
	defer close(s.events)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timerC = nil
		pending = ""
	}
	defer stopTimer()

	fsEvents := s.watcher.Events
	fsErrors := s.watcher.Errors
	for fsEvents != nil {
		select {
		case <-s.done:
			return

		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			s.logger.Debug("fsnotify event", "op", ev.Op.String(), "name", ev.Name)

			switch kind := classify(ev); kind {
			case domain.EventWrite:
				if s.debounce <= 0 {
					s.emit(domain.Event{Kind: kind, Path: ev.Name})
					continue
				}
				pending = ev.Name
				if timer == nil {
					timer = time.NewTimer(s.debounce)
				} else {
					timer.Reset(s.debounce)
				}
				timerC = timer.C
			case domain.EventRemove:
				stopTimer()
				s.emit(domain.Event{Kind: kind, Path: ev.Name})
			default:
				s.emit(domain.Event{Kind: kind, Path: ev.Name})
			}

		case <-timerC:
			timerC = nil
			path := pending
			pending = ""
			s.emit(domain.Event{Kind: domain.EventWrite, Path: path})

		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			select {
			case s.errs <- err:
			case <-s.done:
				return
			}
		}
	}
}

func (s *Source) emit(evt domain.Event) {
	select {
	case s.events <- evt:
	case <-s.done:
	}
}

func classify(ev backend.Event) domain.EventKind {
	switch {
	case ev.Has(backend.Remove), ev.Has(backend.Rename):
		return domain.EventRemove
	case ev.Has(backend.Write):
		return domain.EventWrite
	default:
		return domain.EventOther
	}
}
