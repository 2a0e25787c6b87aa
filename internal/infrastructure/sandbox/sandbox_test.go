package sandbox

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/pkg/logger"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func testRunner(timeoutSeconds int) *Runner {
	return NewRunner(domain.SandboxSettings{Enabled: true, TimeoutSeconds: timeoutSeconds}, logger.NewStd(false))
}

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	requireShell(t)

	outcome, err := testRunner(10).Run(context.Background(), "echo hello; exit 0")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", outcome.ExitCode)
	}
	if !strings.Contains(outcome.Stdout, "hello") {
		t.Fatalf("stdout = %q, want hello", outcome.Stdout)
	}
}

func TestRunNonZeroExitIsEvidenceNotFailure(t *testing.T) {
	requireShell(t)

	outcome, err := testRunner(10).Run(context.Background(), "exit 3")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if outcome.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", outcome.ExitCode)
	}
	if outcome.Failure != "" {
		t.Fatalf("non-zero exit is not a sandbox failure, got %s", outcome.Failure)
	}
}

func TestRunReportsFilesystemDelta(t *testing.T) {
	requireShell(t)

	outcome, err := testRunner(10).Run(context.Background(), "touch created.txt && mkdir sub && touch sub/nested.txt")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	created := strings.Join(outcome.CreatedPaths, ",")
	if !strings.Contains(created, "created.txt") {
		t.Fatalf("created paths %v missing created.txt", outcome.CreatedPaths)
	}
}

func TestRunTimesOut(t *testing.T) {
	requireShell(t)

	outcome, err := testRunner(1).Run(context.Background(), "sleep 10")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var sbxErr *Error
	if !errors.As(err, &sbxErr) || sbxErr.Kind != domain.SandboxTimeout {
		t.Fatalf("expected sandbox timeout error, got %v", err)
	}
	if !outcome.TimedOut {
		t.Fatalf("outcome should record the timeout, got %+v", outcome)
	}
}

func TestRunIsolatesHome(t *testing.T) {
	requireShell(t)

	outcome, err := testRunner(10).Run(context.Background(), "echo $HOME")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	home := strings.TrimSpace(outcome.Stdout)
	if !strings.Contains(home, "cmdgate-sbx-") {
		t.Fatalf("HOME should point into the sandbox dir, got %q", home)
	}
}

func TestRunDestroysSandboxDir(t *testing.T) {
	requireShell(t)

	cases := []struct {
		name    string
		command string
		timeout int
		wantErr bool
	}{
		{"clean exit", "echo $HOME", 10, false},
		{"non-zero exit", "echo $HOME; exit 3", 10, false},
		{"timeout", "echo $HOME; sleep 10", 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := testRunner(tc.timeout).Run(context.Background(), tc.command)
			if tc.wantErr && err == nil {
				t.Fatal("expected an error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Run error: %v", err)
			}
			dir := strings.TrimSpace(strings.SplitN(outcome.Stdout, "\n", 2)[0])
			if !strings.Contains(dir, "cmdgate-sbx-") {
				t.Fatalf("could not capture the sandbox dir from stdout %q", outcome.Stdout)
			}
			if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
				t.Fatalf("sandbox dir %s must be gone after Run, stat err = %v", dir, statErr)
			}
		})
	}
}

func TestAvailableRespectsEnabled(t *testing.T) {
	disabled := NewRunner(domain.SandboxSettings{Enabled: false}, logger.NewStd(false))
	if disabled.Available() {
		t.Fatal("disabled sandbox must report unavailable")
	}
}
