// File: internal/pulumiexec/pulumiexec.go
// Brief: Subprocess boundary for the external pulumi CLI.

// Package pulumiexec is the single place pulumiw touches the external
// provisioning tool: it runs pulumi subcommands in a service's working
// directory, streams their output, and reports exit codes. Session and
// authentication state belong to pulumi itself.
package pulumiexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

const DefaultBinary = "pulumi"

// CLI shells out to the pulumi binary. Calls block until the child exits;
// cancelling the context kills the in-flight child process.
type CLI struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer

	log *zap.SugaredLogger
}

// New returns a CLI streaming to the process stdout/stderr.
func New(log *zap.SugaredLogger) *CLI {
	return &CLI{
		Binary: DefaultBinary,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		log:    log,
	}
}

// Run invokes pulumi with the given args in workdir, streaming output. The
// returned exit code is the child's; err is non-nil only when the child could
// not run at all or the context was cancelled.
func (c *CLI) Run(ctx context.Context, workdir string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, c.binary(), args...)
	cmd.Dir = workdir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	cmd.Stdin = os.Stdin
	c.debugw("executing", "dir", workdir, "cmd", c.binary()+" "+strings.Join(args, " "))
	err := cmd.Run()
	return exitStatus(ctx, err)
}

// runQuiet is Run with captured output, used for probes whose failure is
// expected (stack existence checks).
func (c *CLI) runQuiet(ctx context.Context, workdir string, args ...string) (int, string, error) {
	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary(), args...)
	cmd.Dir = workdir
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	code, err := exitStatus(ctx, err)
	return code, buf.String(), err
}

// EnsureStack makes sure the pulumi stack exists in workdir, selecting it if
// present and initializing it otherwise. Safe to repeat.
func (c *CLI) EnsureStack(ctx context.Context, workdir, stack string) error {
	code, out, err := c.runQuiet(ctx, workdir, "stack", "select", "-s", stack)
	if err != nil {
		return err
	}
	if code == 0 {
		return nil
	}
	c.debugw("stack select failed, initializing", "stack", stack, "output", strings.TrimSpace(out))
	code, err = c.Run(ctx, workdir, "stack", "init", stack)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("pulumi stack init %s exited with code %d", stack, code)
	}
	return nil
}

func (c *CLI) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return DefaultBinary
}

func (c *CLI) debugw(msg string, kv ...any) {
	if c.log != nil {
		c.log.Debugw(msg, kv...)
	}
}

func exitStatus(ctx context.Context, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("run pulumi: %w", err)
}
