package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait keeps reading output after the process was killed.
const waitDelay = 5 * time.Second

// Outcome classifies how an external tool invocation ended.
type Outcome int

const (
	// OutcomeSuccess means the tool exited with code 0.
	OutcomeSuccess Outcome = iota
	// OutcomeNonZeroExit means the tool ran and exited with a non-zero code.
	OutcomeNonZeroExit
	// OutcomeLaunchFailure means the tool could not be started.
	OutcomeLaunchFailure
	// OutcomeInterrupted means the wait was cancelled or timed out.
	OutcomeInterrupted
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNonZeroExit:
		return "non-zero exit"
	case OutcomeLaunchFailure:
		return "launch failure"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Command describes a single tool invocation.
type Command struct {
	// Name is the program name or path.
	Name string
	// Args are passed to the program as separate arguments.
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Timeout cancels the invocation when positive.
	Timeout time.Duration
}

// NewCommand is a shorthand for Command{Name: name, Args: args}.
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// String returns the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}

	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the classified result of an invocation.
type Result struct {
	Command  Command
	Outcome  Outcome
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// Err is the underlying error for every outcome but success.
	Err error
}

// Succeeded reports whether the tool exited with code 0.
func (r *Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// StderrText returns the trimmed standard error output.
func (r *Result) StderrText() string {
	return strings.TrimSpace(string(r.Stderr))
}

// StdoutText returns the trimmed standard output.
func (r *Result) StdoutText() string {
	return strings.TrimSpace(string(r.Stdout))
}

// Runner executes commands. Run blocks until the process has exited.
type Runner interface {
	Run(ctx context.Context, cmd Command) *Result
}

// Invoker is the Runner backed by os/exec.
type Invoker struct{}

// NewInvoker creates an Invoker.
func NewInvoker() *Invoker {
	return &Invoker{}
}

// Run starts the command, waits for it and classifies the result.
func (i *Invoker) Run(ctx context.Context, c Command) *Result {
	if c.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	result := &Result{Command: c, ExitCode: -1}

	if ctx.Err() != nil {
		result.Outcome = OutcomeInterrupted
		result.Err = ctx.Err()

		return result
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...) //nolint:gosec // Tool names come from the packaging policy.
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	configureProcess(cmd)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		result.Outcome = OutcomeLaunchFailure
		result.Err = err

		return result
	}

	err := cmd.Wait()

	result.Stdout = stdout.Bytes()
	result.Stderr = stderr.Bytes()

	switch {
	case err == nil:
		result.Outcome = OutcomeSuccess
		result.ExitCode = 0
	case ctx.Err() != nil:
		result.Outcome = OutcomeInterrupted
		result.Err = fmt.Errorf("%w: %w", ctx.Err(), err)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Outcome = OutcomeNonZeroExit
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Outcome = OutcomeLaunchFailure
		}

		result.Err = err
	}

	return result
}
