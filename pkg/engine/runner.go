// Package engine implements the per-category optimization engines and their
// external tool integration.
package engine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// RunResult is the unified outcome of one external tool invocation. Runner
// implementations never return a Go error for tool failures; everything the
// caller needs to decide on fallback is in the result.
type RunResult struct {
	// Success is true when the process exited with code 0
	Success bool

	// ExitCode is the process exit code, or -1 if it never started
	ExitCode int

	// Stdout and Stderr hold the captured output
	Stdout string
	Stderr string

	// TimedOut is true when the process was killed by its deadline
	TimedOut bool

	// Err describes a failure to start or run the process, if any
	Err string
}

// Runner executes external tools. The indirection exists so engines can be
// exercised in tests without spawning processes.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) RunResult
}

// execRunner runs tools via os/exec with explicit argument lists; no shell
// is ever involved.
type execRunner struct{}

// NewRunner returns the default subprocess-backed Runner
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) RunResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}

	result := RunResult{
		Success:  err == nil,
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result.TimedOut = true
		}
		result.Err = err.Error()
	}

	return result
}
