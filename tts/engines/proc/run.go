package proc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
)

// runner spawns one subprocess per call, feeding stdin and collecting
// stdout. A configured timeout bounds each call; zero waits forever.
type runner struct {
	timeout time.Duration
	logger  *log.Logger
}

// run executes the command and returns its stdout. The exit code is
// ignored when stdout is non-empty, matching the lenient behavior of
// the wrapped tools; an empty stdout surfaces the stderr text.
func (r runner) run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running", "cmd", name, "args", args)
	err := cmd.Run()
	if stdout.Len() > 0 {
		return stdout.Bytes(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil, fmt.Errorf("%s produced no output: %s", name, bytes.TrimSpace(stderr.Bytes()))
}

// exec executes a command whose output goes to a file rather than
// stdout; only the process failure matters.
func (r runner) exec(ctx context.Context, name string, args []string, stdin []byte) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debug("running", "cmd", name, "args", args)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// which reports whether a binary is on PATH, the enablement probe for
// this engine family.
func which(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}
