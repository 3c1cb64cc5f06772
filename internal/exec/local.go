// Package exec runs control-plane commands on this node and on the
// secondary entry node, capturing stdout and stderr separately.
package exec

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/logger"
	"github.com/rileyhilliard/georep/internal/util"
)

// DefaultTimeout bounds a single command when no command_timeout is set.
const DefaultTimeout = 5 * time.Minute

// Result is the outcome of a command that ran to completion.
// A non-zero ExitCode is not an error; the caller decides.
type Result struct {
	Host     string
	Command  string
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// OK reports whether the command exited 0.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Detail returns trimmed stderr, or stdout when stderr is empty. It is what
// gets printed under a failed status line.
func (r Result) Detail() string {
	if s := strings.TrimSpace(string(r.Stderr)); s != "" {
		return s
	}
	return strings.TrimSpace(string(r.Stdout))
}

// Runner runs a program with argv semantics.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Local runs programs on this node without a shell.
type Local struct {
	Timeout time.Duration
	Log     logger.Logger
}

// NewLocal creates a local runner. A zero timeout means DefaultTimeout.
func NewLocal(timeout time.Duration, log logger.Logger) *Local {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Local{Timeout: timeout, Log: log}
}

// Run executes name with args and captures its output.
// Returns an error only when the program couldn't be started or didn't
// finish before the timeout or ctx expired.
func (l *Local) Run(ctx context.Context, name string, args ...string) (Result, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	display := util.ShellJoin(append([]string{name}, args...)...)
	res := Result{Host: "localhost", Command: display, ExitCode: -1}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()
	if l.Log != nil {
		l.Log.Debug("%s (%s)", display, time.Since(start).Round(time.Millisecond))
	}

	if ctx.Err() != nil {
		return res, errors.Wrap(ctx.Err(), fmt.Sprintf("Command did not finish: %s", display))
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if stderrors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if stderrors.Is(runErr, exec.ErrNotFound) {
			return res, errors.WrapWithCode(runErr, errors.ErrTransport,
				fmt.Sprintf("'%s' not found in PATH", name),
				"Install the glusterfs-server package on this node.")
		}
		return res, errors.Wrap(runErr, fmt.Sprintf("Couldn't run %s", display))
	}

	res.ExitCode = 0
	return res, nil
}
