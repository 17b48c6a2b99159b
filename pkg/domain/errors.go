package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyCommand is returned when a chain position holds no tokens, such as
// a leading, doubled or trailing operator.
var ErrEmptyCommand = errors.New("empty command isn't allowed")

// ErrWatchSetup is returned when the watch on the target cannot be established.
var ErrWatchSetup = errors.New("failed to establish watch")

// ErrDispatcherClosed is returned when work is dispatched after shutdown.
var ErrDispatcherClosed = errors.New("dispatcher is shut down")

// ErrHistoryUnavailable is returned by endpoints that need a history store
// when none is configured.
var ErrHistoryUnavailable = errors.New("run history is not enabled")

// SpawnError reports a command that could not be launched.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to execute command %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
