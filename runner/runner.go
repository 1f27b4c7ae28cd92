// Package runner executes an external tool synchronously and captures its
// exit code and raw standard output and error.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/rs/zerolog"
)

var (
	// ErrToolUnavailable is returned when the executable cannot be found or spawned.
	ErrToolUnavailable = errors.New("tool unavailable")
	// ErrTimeout is returned when the process exceeded the configured timeout.
	ErrTimeout = errors.New("tool timed out")
)

// ToolError reports a failure to start the external tool.
type ToolError struct {
	Path string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrToolUnavailable, e.Path, e.Err)
}

func (e *ToolError) Unwrap() []error {
	return []error{ErrToolUnavailable, e.Err}
}

// Result is the captured outcome of one process execution.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Runner manages process execution for the harness.
type Runner struct {
	logger  zerolog.Logger
	timeout time.Duration
	dir     string
	env     []string
}

// Option is a function that configures a Runner.
type Option func(*Runner)

// WithTimeout kills the process once d has elapsed. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithDir sets the working directory of the spawned process.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithEnv sets the environment of the spawned process. Nil inherits ours.
func WithEnv(env []string) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// New creates a Runner.
func New(logger zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run splits commandLine into words and executes it. It blocks until the
// process exits. A non-zero exit status is not an error.
func (r *Runner) Run(ctx context.Context, commandLine string) (*Result, error) {
	args, err := SplitCommandLine(commandLine)
	if err != nil {
		return nil, err
	}
	return r.RunArgs(ctx, args[0], args[1:]...)
}

// RunArgs executes name with a structured argument list.
func (r *Runner) RunArgs(ctx context.Context, name string, args ...string) (*Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.dir
	cmd.Env = r.env
	if r.timeout > 0 {
		cmd.WaitDelay = time.Second
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug().
		Str("command", shellescape.QuoteCommand(append([]string{name}, args...))).
		Msg("Executing tool")

	start := time.Now()
	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && r.timeout > 0 {
			return result, fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			r.logger.Debug().
				Int("exit_code", result.ExitCode).
				Msg("Tool exited with non-zero status")
			return result, nil
		}
		return nil, &ToolError{Path: name, Err: err}
	}

	r.logger.Debug().
		Int("stdout_bytes", len(result.Stdout)).
		Int("stderr_bytes", len(result.Stderr)).
		Dur("duration", result.Duration).
		Msg("Tool completed")
	return result, nil
}
