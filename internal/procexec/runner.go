package procexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"log/slog"

	"legenda/internal/logging"
	"legenda/internal/services"
)

// stderrTailBytes bounds the stderr excerpt carried inside process errors.
const stderrTailBytes = 500

// Invocation describes one external tool execution.
type Invocation struct {
	// Primary is the executable tried first.
	Primary string
	// Fallback is tried with identical args when Primary cannot be spawned
	// at all. Optional.
	Fallback string
	Args     []string
	// Timeout bounds the whole invocation, fallback attempt included.
	// Zero means the caller's context is the only bound.
	Timeout time.Duration
	// ArtifactPath, when set, must exist after a zero exit. External tools
	// can exit 0 without producing output; that is not success.
	ArtifactPath string
}

// Result reports a completed invocation.
type Result struct {
	// Binary is the executable that actually ran.
	Binary string
	Stdout string
	Stderr string
}

// Runner spawns external executables with piped stdio, a deadline, and a
// primary/fallback attempt list.
type Runner struct {
	logger *slog.Logger

	// startCommand is swappable in tests.
	startCommand func(ctx context.Context, name string, args []string, stdout, stderr *bytes.Buffer) (waiter, error)
}

type waiter interface {
	Wait() error
}

// NewRunner constructs a Runner.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{
		logger:       logging.WithComponent(logger, "procexec"),
		startCommand: startExecCommand,
	}
}

func startExecCommand(ctx context.Context, name string, args []string, stdout, stderr *bytes.Buffer) (waiter, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Give the child a short grace window after cancellation, then kill it.
	// Abandoning timed-out children leaks encoder processes under load.
	cmd.WaitDelay = 5 * time.Second
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Run executes the invocation. Spawn failures advance to the fallback;
// a non-zero exit, timeout, or missing artifact is terminal.
func (r *Runner) Run(ctx context.Context, inv Invocation) (Result, error) {
	var result Result

	if strings.TrimSpace(inv.Primary) == "" {
		return result, services.Wrap(services.ErrConfiguration, "procexec", "run", "no executable configured", nil)
	}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	binaries := []string{inv.Primary}
	if fb := strings.TrimSpace(inv.Fallback); fb != "" {
		binaries = append(binaries, fb)
	}

	var spawnErrs []error
	for _, binary := range binaries {
		var stdout, stderr bytes.Buffer

		proc, err := r.startCommand(ctx, binary, inv.Args, &stdout, &stderr)
		if err != nil {
			r.logger.Warn("spawn failed, trying next executable",
				logging.String("binary", binary), logging.Error(err))
			spawnErrs = append(spawnErrs, fmt.Errorf("%s: %w", binary, err))
			continue
		}

		r.logger.Debug("process started",
			logging.String("binary", binary),
			logging.String("args", strings.Join(inv.Args, " ")))

		waitErr := proc.Wait()
		result.Binary = binary
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()

		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, services.Wrap(services.ErrTimeout, "procexec", "wait",
				fmt.Sprintf("%s did not finish before the deadline", binary), ctxErr)
		}
		if waitErr != nil {
			return result, services.Wrap(services.ErrProcessExit, "procexec", "wait",
				fmt.Sprintf("%s failed: %s", binary, stderrTail(result.Stderr)), waitErr)
		}

		if inv.ArtifactPath != "" {
			if _, err := os.Stat(inv.ArtifactPath); err != nil {
				return result, services.Wrap(services.ErrMissingArtifact, "procexec", "verify artifact",
					fmt.Sprintf("%s exited 0 but %s is missing", binary, inv.ArtifactPath), err)
			}
		}
		return result, nil
	}

	return result, services.Wrap(services.ErrSpawn, "procexec", "start",
		"no executable could be launched", errors.Join(spawnErrs...))
}

// stderrTail returns the final bounded portion of captured stderr.
func stderrTail(stderr string) string {
	trimmed := strings.TrimSpace(stderr)
	if len(trimmed) <= stderrTailBytes {
		return trimmed
	}
	return trimmed[len(trimmed)-stderrTailBytes:]
}
