package cyclonedx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ErrSubprocess is returned when the SBOM generator cannot be started or
// exits unsuccessfully.
var ErrSubprocess = errors.New("sbom generator failed")

// ExitError reports a non-zero exit status.
type ExitError struct {
	Path     string
	ExitCode int
	err      error
}

// Error returns the exit status message.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: %s exited with status %d", ErrSubprocess, e.Path, e.ExitCode)
}

// Unwrap returns the underlying *exec.ExitError.
func (e *ExitError) Unwrap() error {
	return e.err
}

// Is reports whether target is ErrSubprocess.
func (e *ExitError) Is(target error) bool {
	return target == ErrSubprocess
}

// ProcessRunner runs an executable to completion.
type ProcessRunner interface {
	Run(ctx context.Context, path string, args []string) error
}

// ExecRunner runs processes with os/exec, forwarding their output streams.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	Dir    string   // working directory, empty for the current one
	Env    []string // nil inherits the current environment
}

// NewExecRunner creates a runner that forwards to os.Stdout and os.Stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts path with args and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, path string, args []string) error {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Dir = r.Dir
	cmd.Env = r.Env

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: interrupted: %w", ErrSubprocess, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Path: path, ExitCode: exitErr.ExitCode(), err: exitErr}
	}

	return fmt.Errorf("%w: start %s: %w", ErrSubprocess, path, err)
}
