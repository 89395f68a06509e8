// Package process runs external programs behind a small interface so
// callers can substitute fakes in tests.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Command describes one program invocation
type Command struct {
	Path string   // Executable path
	Args []string // Arguments, excluding the program name
	Dir  string   // Working directory (empty for the current one)
	Env  []string // Extra KEY=VALUE pairs appended to the environment
}

func (c Command) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// Result contains the captured output of a finished program
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external programs
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs programs with os/exec
type ExecRunner struct {
	timeout time.Duration
}

// NewExecRunner creates a runner. A zero timeout means the program may run
// until ctx is done.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{timeout: timeout}
}

// ExitError reports a program that ran but exited non-zero
type ExitError struct {
	Command  string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// Run executes cmd, blocking until it exits. Output is always returned,
// even alongside an error.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	result := &Result{}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.WaitDelay = 100 * time.Millisecond // Allow graceful shutdown after context cancel
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result, fmt.Errorf("%s timed out: %w", cmd.Path, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, &ExitError{Command: cmd.Path, ExitCode: result.ExitCode}
		}
		return result, fmt.Errorf("running %s: %w", cmd.Path, err)
	}

	return result, nil
}
