package shell

import (
	"context"
	"os/exec"
	"time"

	"github.com/antigravity-tools/gateway-discovery/pkg/errors"
	"github.com/antigravity-tools/gateway-discovery/pkg/logging"
)

// Executor runs a full command line through the platform shell and returns
// its combined output. Discovery never calls os/exec directly; everything
// external goes through this interface so tests can substitute canned output.
type Executor interface {
	Run(ctx context.Context, command string, timeout time.Duration) (string, error)
}

type stdExecutor struct {
	logger logging.Logger
}

// NewStdExecutor creates an Executor backed by the OS shell
// (sh -c on Unix, cmd /C on Windows).
func NewStdExecutor(logger logging.Logger) Executor {
	return &stdExecutor{logger: logger}
}

func (e *stdExecutor) Run(ctx context.Context, command string, timeout time.Duration) (string, error) {
	if command == "" {
		return "", errors.NewValidationError("command cannot be empty", nil)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCommand(runCtx, command)

	e.logger.Debugf("Running shell command, command: %s, timeout: %v", command, timeout)

	output, err := cmd.CombinedOutput()

	if runCtx.Err() == context.DeadlineExceeded {
		return string(output), errors.NewTimeoutError("shell command timed out", runCtx.Err()).WithContext("command", command).WithContext("timeout", timeout.String())
	}

	if err != nil {
		// Non-zero exit with output is still useful to callers (grep exits 1
		// on no match); surface both.
		if _, ok := err.(*exec.ExitError); ok {
			return string(output), errors.NewProcessError("shell command exited with error", err).WithContext("command", command)
		}
		return string(output), errors.NewProcessError("shell command failed to run", err).WithContext("command", command)
	}

	return string(output), nil
}
