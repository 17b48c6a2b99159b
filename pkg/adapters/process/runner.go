package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/google/uuid"
)

// TriggerEnv is the environment variable that carries the triggering path
// to every spawned command, substituted or not.
const TriggerEnv = "REWATCH_TRIGGER"

// Runner implements ports.ChainExecutor by spawning local processes.
// No shell is involved: each command is looked up and started directly.
type Runner struct {
	baseDir string
	env     []string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	diag    io.Writer
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	newID   func() string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) RunnerOption {
	return func(r *Runner) {
		r.env = append(r.env, env...)
	}
}

// WithStdio overrides the standard streams given to commands.
// A nil stream leaves the corresponding default (the current process) in place.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) RunnerOption {
	return func(r *Runner) {
		if stdin != nil {
			r.stdin = stdin
		}
		if stdout != nil {
			r.stdout = stdout
		}
		if stderr != nil {
			r.stderr = stderr
		}
	}
}

// WithDiagnostics sets where spawn failures are reported to the user.
func WithDiagnostics(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.diag = w
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) RunnerOption {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// WithIDGenerator replaces the run ID generator (uuid by default).
func WithIDGenerator(fn func() string) RunnerOption {
	return func(r *Runner) {
		r.newID = fn
	}
}

// NewRunner creates a new process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		diag:   os.Stderr,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs the chain command by command.
//
// A command that cannot be started ends the chain whatever its gate says.
// Otherwise the command's gate decides, from its exit status, whether the next
// command runs. Once started, a command always runs to completion: ctx is
// only handed to the hooks.
func (r *Runner) Execute(ctx context.Context, chain domain.Chain) {
	record := &domain.RunRecord{
		ID:        r.newID(),
		Trigger:   chain.Trigger,
		StartedAt: time.Now(),
		Commands:  make([]domain.CommandOutcome, 0, chain.Len()),
	}
	r.emitChain(ctx, r.hooks.OnChainStart, domain.HookChainStart, record)
	r.logger.Debug("Chain started", "run_id", record.ID, "trigger", chain.Trigger, "commands", chain.Len())

	for i, cmd := range chain.Commands {
		outcome := r.run(chain.Trigger, cmd)
		record.Commands = append(record.Commands, outcome)

		if r.hooks.OnCommandExit != nil {
			r.hooks.OnCommandExit(ctx, &domain.CommandEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.HookCommandExit, RunID: record.ID},
				Outcome:   outcome,
			})
		}

		if !proceed(cmd, outcome) {
			record.Stopped = i < chain.Len()-1
			break
		}
	}

	record.FinishedAt = time.Now()
	r.logger.Debug("Chain finished", "run_id", record.ID, "stopped", record.Stopped, "duration", record.Duration())
	r.emitChain(ctx, r.hooks.OnChainDone, domain.HookChainDone, record)
}

func proceed(cmd domain.Command, outcome domain.CommandOutcome) bool {
	if outcome.Outcome == domain.OutcomeSpawnError {
		return false
	}
	return cmd.Gate.Proceed(outcome.Outcome == domain.OutcomeSuccess)
}

func (r *Runner) run(trigger string, cmd domain.Command) domain.CommandOutcome {
	c := exec.Command(cmd.Name, cmd.Args...)
	c.Dir = r.baseDir
	c.Stdin = r.stdin
	c.Stdout = r.stdout
	c.Stderr = r.stderr
	c.Env = append(c.Environ(), r.env...)
	c.Env = append(c.Env, fmt.Sprintf("%s=%s", TriggerEnv, trigger))

	outcome := domain.CommandOutcome{Command: cmd.String()}
	start := time.Now()

	err := c.Start()
	if err == nil {
		err = c.Wait()
	}
	outcome.Duration = time.Since(start)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		outcome.Outcome = domain.OutcomeSuccess
	case errors.As(err, &exitErr):
		outcome.Outcome = domain.OutcomeFailure
		outcome.ExitCode = exitErr.ExitCode()
	default:
		spawnErr := &domain.SpawnError{Command: cmd.Name, Err: err}
		outcome.Outcome = domain.OutcomeSpawnError
		outcome.ExitCode = -1
		outcome.Error = spawnErr.Error()
		fmt.Fprintf(r.diag, "Error: Failed to execute command: %v\n", err)
		r.logger.Error("Command spawn failed", "command", cmd.Name, "err", spawnErr)
		return outcome
	}

	r.logger.Debug("Command exited", "command", cmd.Name, "exit_code", outcome.ExitCode, "duration", outcome.Duration)
	return outcome
}

func (r *Runner) emitChain(ctx context.Context, hook func(context.Context, *domain.ChainEvent), typ domain.HookType, record *domain.RunRecord) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.ChainEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, RunID: record.ID},
		Record:    record,
	})
}
