// Where: internal/infra/execx/runner.go
// What: External command execution with capture limits.
// Why: Install and archive tools are tool invocations with a pass/fail contract.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// maxCapturedOutputBytes caps combined output capture. Dependency installs
// can log entire trees, so the ceiling is generous.
const maxCapturedOutputBytes int64 = 50 << 20

// ErrOutputCeiling reports that a command produced more captured output
// than the runner is willing to hold in memory.
var ErrOutputCeiling = errors.New("command output exceeded capture ceiling")

// LookPath resolves a binary on PATH. Swappable in tests.
var LookPath = exec.LookPath

// CommandRunner defines the interface for executing external commands.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
	RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error)
	RunQuiet(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner is a concrete implementation of CommandRunner using os/exec.
// Out and ErrOut default to the process streams when nil.
type ExecRunner struct {
	Out    io.Writer
	ErrOut io.Writer
}

func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.stdout()
	cmd.Stderr = r.stderr()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// RunOutput captures combined stdout and stderr up to the capture ceiling.
// Captured bytes are returned even when the command fails so callers can
// include them in errors.
func (r ExecRunner) RunOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	capture := &cappedBuffer{limit: maxCapturedOutputBytes}
	cmd.Stdout = capture
	cmd.Stderr = capture
	if err := cmd.Run(); err != nil {
		if capture.overflowed {
			return capture.buf.Bytes(), fmt.Errorf("run %s: %w", name, ErrOutputCeiling)
		}
		return capture.buf.Bytes(), fmt.Errorf("run %s: %w", name, err)
	}
	return capture.buf.Bytes(), nil
}

func (r ExecRunner) RunQuiet(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

func (r ExecRunner) stdout() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

func (r ExecRunner) stderr() io.Writer {
	if r.ErrOut != nil {
		return r.ErrOut
	}
	return os.Stderr
}

// cappedBuffer rejects writes past its limit, failing the producing command.
type cappedBuffer struct {
	buf        bytes.Buffer
	limit      int64
	overflowed bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len())+int64(len(p)) > b.limit {
		b.overflowed = true
		return 0, ErrOutputCeiling
	}
	return b.buf.Write(p)
}
