package domain

import "time"

// Outcome classifies how a command ended.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeFailure    Outcome = "failure"
	OutcomeSpawnError Outcome = "spawn_error"
)

// CommandOutcome describes one command of an executed chain.
type CommandOutcome struct {
	Command  string        `json:"command"`
	Outcome  Outcome       `json:"outcome"`
	ExitCode int           `json:"exit_code"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RunRecord describes one chain execution. It is observational only: the
// dispatcher and the loop never consume it.
type RunRecord struct {
	ID         string           `json:"id"`
	Trigger    string           `json:"trigger"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Commands   []CommandOutcome `json:"commands"`
	// Stopped is true when the chain ended before its last command.
	Stopped bool `json:"stopped"`
}

// Duration returns the wall time of the run.
func (r RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
