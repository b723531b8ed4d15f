package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	m "gooze.dev/pkg/mutscore/internal/model"
)

// TargetPlaceholder is replaced by the test target in the configured command.
const TargetPlaceholder = "{target}"

// waitDelay bounds how long Wait blocks on output pipes after the command was killed.
const waitDelay = 2 * time.Second

// ErrCommandNotFound is returned when the test command binary cannot be located.
var ErrCommandNotFound = errors.New("test command not found")

// DefaultTestCommand runs the Go test suite of the target package.
func DefaultTestCommand() []string {
	return []string{"go", "test", "-count=1", TargetPlaceholder}
}

// TestRunnerAdapter abstracts test execution operations for mutation testing.
type TestRunnerAdapter interface {
	// Validate checks that the test command can be started at all.
	Validate(ctx context.Context) error

	// Run executes the test command against target. A run that exceeds timeout
	// is killed and reported with TimedOut set. An error is returned only when
	// the command produced no result (it could not be started or its output
	// could not be collected) or ctx itself was cancelled.
	Run(ctx context.Context, target m.TestTarget, timeout time.Duration) (m.Execution, error)
}

// LocalTestRunnerAdapter provides a concrete implementation using os/exec.
type LocalTestRunnerAdapter struct {
	command []string
}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter. An empty
// command selects DefaultTestCommand.
func NewLocalTestRunnerAdapter(command ...string) *LocalTestRunnerAdapter {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		command = DefaultTestCommand()
	}

	return &LocalTestRunnerAdapter{command: command}
}

// Validate resolves the command binary on PATH.
func (a *LocalTestRunnerAdapter) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := exec.LookPath(a.command[0]); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCommandNotFound, a.command[0], err)
	}

	return nil
}

// Run executes the test command for target in target.WorkDir.
func (a *LocalTestRunnerAdapter) Run(ctx context.Context, target m.TestTarget, timeout time.Duration) (m.Execution, error) {
	if err := ctx.Err(); err != nil {
		return m.Execution{}, err
	}

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	}

	defer cancel()

	args := a.argsFor(target)

	var stdout, stderr outputBuffer

	stdout.stream = "stdout"
	stderr.stream = "stderr"

	// #nosec G204 - the command comes from the user's own configuration
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Dir = string(target.WorkDir)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	slog.Debug("Running test command", "args", args, "dir", cmd.Dir, "timeout", timeout)

	start := time.Now()

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to start test command", "args", args, "error", err)
		return m.Execution{}, fmt.Errorf("start %s: %w", args[0], err)
	}

	waitErr := cmd.Wait()

	execution := m.Execution{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		return execution, ctx.Err()
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		execution.TimedOut = true
		execution.ExitCode = -1
		slog.Debug("Test command timed out", "args", args, "timeout", timeout)

		return execution, nil
	}

	// ErrWaitDelay means the command exited 0 but a child kept its output open.
	if waitErr == nil || errors.Is(waitErr, exec.ErrWaitDelay) {
		return execution, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		execution.ExitCode = exitErr.ExitCode()
		return execution, nil
	}

	return execution, fmt.Errorf("wait %s: %w", args[0], waitErr)
}

func (a *LocalTestRunnerAdapter) argsFor(target m.TestTarget) []string {
	args := make([]string, 0, len(a.command)+1)
	substituted := false

	for _, arg := range a.command {
		if strings.Contains(arg, TargetPlaceholder) {
			arg = strings.ReplaceAll(arg, TargetPlaceholder, target.Arg)
			substituted = true
		}

		args = append(args, arg)
	}

	if !substituted && target.Arg != "" {
		args = append(args, target.Arg)
	}

	return args
}

// outputBuffer collects command output and mirrors complete lines to the debug log.
type outputBuffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	partial []byte
	stream  string
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.Write(p)
	b.partial = append(b.partial, p...)

	for {
		idx := bytes.IndexByte(b.partial, '\n')
		if idx < 0 {
			break
		}

		slog.Debug("test output", "stream", b.stream, "line", string(b.partial[:idx]))
		b.partial = b.partial[idx+1:]
	}

	return len(p), nil
}

func (b *outputBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
