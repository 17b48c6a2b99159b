package domain

import (
	"context"
	"time"
)

// EventKind classifies a change notification.
type EventKind string

const (
	EventWrite  EventKind = "write"
	EventRemove EventKind = "remove"
	EventOther  EventKind = "other"
)

// Event is a change notification for the watched path.
type Event struct {
	Kind EventKind `json:"kind"`
	Path string    `json:"path"`
}

// HookType defines the category of a lifecycle notification.
type HookType string

const (
	HookChainStart  HookType = "chain_start"
	HookCommandExit HookType = "command_exit"
	HookChainDone   HookType = "chain_done"
)

// EventBase contains common fields for all lifecycle notifications.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      HookType  `json:"type"`
	RunID     string    `json:"run_id"`
}

// ChainEvent is emitted when a chain starts and when it finishes.
// Record is complete only on HookChainDone.
type ChainEvent struct {
	EventBase
	Record *RunRecord `json:"record"`
}

// CommandEvent is emitted after each command has exited or failed to start.
type CommandEvent struct {
	EventBase
	Outcome CommandOutcome `json:"outcome"`
}

// LifecycleHooks defines callbacks for executor observability.
// Hooks run on the goroutine executing the chain.
type LifecycleHooks struct {
	OnChainStart  func(context.Context, *ChainEvent)
	OnCommandExit func(context.Context, *CommandEvent)
	OnChainDone   func(context.Context, *ChainEvent)
}

// MergeHooks fans each callback out to every non-nil hook in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnChainStart: func(ctx context.Context, e *ChainEvent) {
			for _, h := range hooks {
				if h.OnChainStart != nil {
					h.OnChainStart(ctx, e)
				}
			}
		},
		OnCommandExit: func(ctx context.Context, e *CommandEvent) {
			for _, h := range hooks {
				if h.OnCommandExit != nil {
					h.OnCommandExit(ctx, e)
				}
			}
		},
		OnChainDone: func(ctx context.Context, e *ChainEvent) {
			for _, h := range hooks {
				if h.OnChainDone != nil {
					h.OnChainDone(ctx, e)
				}
			}
		},
	}
}
