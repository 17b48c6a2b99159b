package memory

import (
	"errors"
	"sync"

	"github.com/aretw0/rewatch/pkg/domain"
)

// ErrSourceClosed is returned when pushing to a closed Source.
var ErrSourceClosed = errors.New("memory source is closed")

// Source implements ports.EventSource with events pushed by the caller.
// It is meant for tests and for hosts that already have their own watcher.
type Source struct {
	path   string
	events chan domain.Event
	errs   chan error

	mu     sync.Mutex
	closed bool
}

// NewSource creates a source for path that buffers up to buffer events
// before Push blocks.
func NewSource(path string, buffer int) *Source {
	return &Source{
		path:   path,
		events: make(chan domain.Event, buffer),
		errs:   make(chan error, buffer),
	}
}

// Path returns the watched path.
func (s *Source) Path() string {
	return s.path
}

// Events returns the event stream.
func (s *Source) Events() <-chan domain.Event {
	return s.events
}

// Errors returns the error stream.
func (s *Source) Errors() <-chan error {
	return s.errs
}

// Push delivers an event.
func (s *Source) Push(evt domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSourceClosed
	}
	s.events <- evt
	return nil
}

// Write pushes a write event for the watched path.
func (s *Source) Write() error {
	return s.Push(domain.Event{Kind: domain.EventWrite, Path: s.path})
}

// Remove pushes a remove event for the watched path.
func (s *Source) Remove() error {
	return s.Push(domain.Event{Kind: domain.EventRemove, Path: s.path})
}

// Fail delivers a source error.
func (s *Source) Fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSourceClosed
	}
	s.errs <- err
	return nil
}

// Close closes the event stream. It is safe to call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	return nil
}
