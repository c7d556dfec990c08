// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package procgroup runs external commands in their own process group so a
// cancelled run never leaves orphaned children behind.
package procgroup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/ManuGH/rasaedge/internal/log"
	"github.com/ManuGH/rasaedge/internal/metrics"
)

var (
	// ErrNonZeroExit is returned when a command ran but exited with a non-zero code.
	ErrNonZeroExit = errors.New("command exited with non-zero status")
	// ErrStart is returned when a command could not be started at all.
	ErrStart = errors.New("command failed to start")
)

// DefaultGrace is how long a cancelled process group gets between SIGTERM and SIGKILL.
const DefaultGrace = 2 * time.Second

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string // nil inherits the current environment
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	s := c.Name
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}

// Result captures the outcome of a finished command.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Output returns stderr followed by stdout; nginx reports on stderr.
func (r Result) Output() string {
	return string(bytes.TrimSpace(append(append([]byte{}, r.Stderr...), r.Stdout...)))
}

// Run starts c as a process group leader and waits for it to finish.
// If ctx is cancelled first, the whole group is terminated (SIGTERM, then
// SIGKILL after grace) and ctx's error is returned.
func Run(ctx context.Context, c Command, grace time.Duration) (Result, error) {
	if grace <= 0 {
		grace = DefaultGrace
	}
	logger := log.WithComponentFromContext(ctx, "procgroup")
	label := filepath.Base(c.Name)

	// #nosec G204 -- binaries come from operator configuration
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Bounds Wait when a forked child keeps the output pipes open.
	cmd.WaitDelay = grace
	Set(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		metrics.ObserveCommand(label, "start_error", time.Since(start))
		return Result{ExitCode: -1}, fmt.Errorf("%w: %s: %w", ErrStart, c, err)
	}

	logger.Debug().
		Str(log.FieldCommand, c.String()).
		Int("pid", cmd.Process.Pid).
		Msg("command started")

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	var waitErr error
	cancelled := false
	select {
	case waitErr = <-waitCh:
	case <-ctx.Done():
		cancelled = true
		logger.Warn().
			Str(log.FieldCommand, c.String()).
			Msg("context cancelled, terminating process group")
		waitErr = Terminate(cmd, waitCh, grace)
	}

	res := Result{
		ExitCode: exitCode(cmd, waitErr),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	logger.Debug().
		Str(log.FieldCommand, c.String()).
		Int(log.FieldExitCode, res.ExitCode).
		Int64(log.FieldDuration, res.Duration.Milliseconds()).
		Msg("command finished")

	switch {
	case cancelled:
		metrics.ObserveCommand(label, "cancelled", res.Duration)
		return res, fmt.Errorf("%s: %w", c, ctx.Err())
	case waitErr != nil:
		metrics.ObserveCommand(label, "failed", res.Duration)
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("%w: %s (exit %d)", ErrNonZeroExit, c, res.ExitCode)
		}
		return res, fmt.Errorf("%s: %w", c, waitErr)
	default:
		metrics.ObserveCommand(label, "ok", res.Duration)
		return res, nil
	}
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if waitErr != nil {
		return -1
	}
	return 0
}
