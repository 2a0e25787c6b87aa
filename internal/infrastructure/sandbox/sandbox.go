// Package sandbox implements the Sandbox port: it runs a command inside a
// disposable working directory with a restricted environment and a hard
// wall-clock timeout, and reports filesystem deltas as empirical evidence.
//
// The disposable directory is destroyed on every exit path. Failures are
// categorized and carried as outcome data; they are never evidence that a
// command is safe.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// Error describes a sandbox failure with its category.
type Error struct {
	Kind domain.SandboxFailure
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("sandbox %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Runner implements ports.Sandbox.
type Runner struct {
	settings domain.SandboxSettings
	log      ports.Logger
}

// NewRunner builds a sandbox runner from the configured settings.
func NewRunner(settings domain.SandboxSettings, log ports.Logger) *Runner {
	return &Runner{settings: settings, log: log}
}

// Available reports whether empirical verification can run at all.
// Unavailability degrades to "no empirical evidence"; it never relaxes the
// static gate decision.
func (r *Runner) Available() bool {
	if !r.settings.Enabled {
		return false
	}
	_, err := exec.LookPath("sh")
	return err == nil
}

// Run implements ports.Sandbox.
func (r *Runner) Run(ctx context.Context, command string) (outcome domain.ExecutionOutcome, err error) {
	dir, mkErr := os.MkdirTemp("", "cmdgate-sbx-")
	if mkErr != nil {
		outcome.Failure = domain.SandboxInitFailed
		outcome.FailureDetail = mkErr.Error()
		return outcome, &Error{Kind: domain.SandboxInitFailed, Err: mkErr}
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			r.log.Error("sandbox cleanup failed", rmErr, map[string]interface{}{"dir": dir})
			if outcome.Failure == "" {
				outcome.Failure = domain.SandboxCleanupFailed
				outcome.FailureDetail = rmErr.Error()
			}
			if err == nil {
				err = &Error{Kind: domain.SandboxCleanupFailed, Err: rmErr}
			}
		}
	}()

	timeout := domain.DefaultSandboxTimeout
	if r.settings.TimeoutSeconds > 0 {
		timeout = time.Duration(r.settings.TimeoutSeconds) * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	before := snapshotDir(dir)

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = r.restrictedEnv(dir)
	setProcGroup(cmd)
	cmd.Cancel = func() error { return killTree(cmd) }
	cmd.WaitDelay = domain.SandboxKillGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	outcome.DurationMS = time.Since(start).Milliseconds()
	outcome.Stdout = excerpt(stdout.Bytes())
	outcome.Stderr = excerpt(stderr.Bytes())

	after := snapshotDir(dir)
	outcome.CreatedPaths, outcome.ModifiedPaths, outcome.DeletedPaths = diffSnapshots(before, after)

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		outcome.TimedOut = true
		outcome.ExitCode = -1
		outcome.Failure = domain.SandboxTimeout
		outcome.FailureDetail = fmt.Sprintf("exceeded %s", timeout)
		return outcome, &Error{Kind: domain.SandboxTimeout, Err: runCtx.Err()}
	case errors.Is(runCtx.Err(), context.Canceled):
		outcome.ExitCode = -1
		outcome.Failure = domain.SandboxExecFailed
		outcome.FailureDetail = "cancelled"
		return outcome, &Error{Kind: domain.SandboxExecFailed, Err: runCtx.Err()}
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		// Non-zero exit is evidence, not a sandbox failure.
		outcome.ExitCode = exitErr.ExitCode()
		return outcome, nil
	}
	if runErr != nil {
		outcome.ExitCode = -1
		outcome.Failure = domain.SandboxExecFailed
		outcome.FailureDetail = runErr.Error()
		return outcome, &Error{Kind: domain.SandboxExecFailed, Err: runErr}
	}
	return outcome, nil
}

// restrictedEnv whitelists a minimal environment rooted at the sandbox
// directory. Without allow_network, proxy variables point at a closed
// local port as a best-effort egress damper for proxy-aware tools.
func (r *Runner) restrictedEnv(dir string) []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + dir,
		"TMPDIR=" + dir,
		"LANG=" + os.Getenv("LANG"),
		"TERM=" + os.Getenv("TERM"),
	}
	if !r.settings.AllowNetwork {
		env = append(env,
			"http_proxy=http://127.0.0.1:9",
			"https_proxy=http://127.0.0.1:9",
			"HTTP_PROXY=http://127.0.0.1:9",
			"HTTPS_PROXY=http://127.0.0.1:9",
			"no_proxy=",
			"NO_PROXY=",
		)
	}
	return env
}

func excerpt(data []byte) string {
	if len(data) > domain.MaxOutputExcerpt {
		return string(data[:domain.MaxOutputExcerpt]) + "..."
	}
	return string(data)
}

var _ ports.Sandbox = (*Runner)(nil)
