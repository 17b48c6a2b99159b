package ports

import "github.com/aretw0/rewatch/pkg/domain"

// EventSource delivers debounced change events for a single path.
type EventSource interface {
	// Path returns the watched path.
	Path() string
	// Events is closed when the source stops.
	Events() <-chan domain.Event
	// Errors carries failures of the source itself. They are not fatal.
	Errors() <-chan error
	// Close stops the source and releases its resources.
	Close() error
}
