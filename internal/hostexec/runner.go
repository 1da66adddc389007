// SPDX-License-Identifier: MPL-2.0

package hostexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/kioskprov/kioskprov/pkg/platform"
	"github.com/kioskprov/kioskprov/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// Runner executes host commands.
	Runner interface {
		// Run executes the command with its output streamed to the runner's writers.
		Run(ctx context.Context, name string, args ...string) error
		// Output executes the command and returns its captured stdout.
		Output(ctx context.Context, name string, args ...string) (string, error)
	}

	// CommandError is returned when a command exits non-zero or cannot start.
	CommandError struct {
		// Command is the command line as the operator would type it.
		Command string
		// ExitCode is the tool's exit status, or ExitFailure when it never ran.
		ExitCode types.ExitCode
		// Stderr holds captured error output (Output only).
		Stderr string
		// Err is the underlying exec error.
		Err error
	}

	// ExecRunner runs commands on the host with os/exec.
	ExecRunner struct {
		stdout io.Writer
		stderr io.Writer
		prefix []string
		logger *log.Logger
	}

	// Option configures an ExecRunner.
	Option func(*ExecRunner)
)

// WithOutput sets the writers receiving the output of Run.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *ExecRunner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithPrefix overrides the detected spawn prefix. Pass nil to run commands directly.
func WithPrefix(prefix []string) Option {
	return func(r *ExecRunner) { r.prefix = prefix }
}

// WithLogger sets the logger used for per-command debug lines.
func WithLogger(logger *log.Logger) Option {
	return func(r *ExecRunner) { r.logger = logger }
}

// NewExecRunner creates a runner that streams to the process's stdout and stderr.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{
		stdout: os.Stdout,
		stderr: os.Stderr,
		prefix: platform.HostSpawnPrefix(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes name with args, streaming output.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := r.command(ctx, name, args)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	return wrapExitError(CommandLine(name, args...), cmd.Run(), "")
}

// Output executes name with args and returns stdout. Stderr is captured and
// attached to the error on failure.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := r.command(ctx, name, args)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), wrapExitError(CommandLine(name, args...), err, stderr.String())
}

func (r *ExecRunner) command(ctx context.Context, name string, args []string) *exec.Cmd {
	argv := make([]string, 0, len(r.prefix)+1+len(args))
	argv = append(argv, r.prefix...)
	argv = append(argv, name)
	argv = append(argv, args...)

	r.logger.Debug("exec", "cmd", strings.Join(argv, " "))
	return exec.CommandContext(ctx, argv[0], argv[1:]...)
}

func wrapExitError(cmdline string, err error, stderr string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{
			Command:  cmdline,
			ExitCode: types.ExitCode(exitErr.ExitCode()).Normalize(),
			Stderr:   strings.TrimSpace(stderr),
			Err:      err,
		}
	}
	// Not found, permission denied, context canceled.
	return &CommandError{Command: cmdline, ExitCode: types.ExitFailure, Err: err}
}

// CommandLine joins a command for logs and error messages.
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error { return e.Err }

// ExitCodeOf returns the exit status carried by err, ExitSuccess for nil and
// ExitFailure for errors that carry none.
func ExitCodeOf(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return types.ExitFailure
}
