package exec

import (
	"context"
	"time"

	"github.com/rileyhilliard/georep/internal/logger"
	"github.com/rileyhilliard/georep/internal/util"
	"github.com/rileyhilliard/georep/pkg/sshutil"
)

// Remote runs commands on the secondary entry node over the shared SSH
// client. Commands are prefixed with sudo when Sudo is set.
type Remote struct {
	Client  sshutil.SSHClient
	Sudo    bool
	Timeout time.Duration
	Log     logger.Logger
}

// NewRemote creates a remote runner. A zero timeout means DefaultTimeout.
func NewRemote(client sshutil.SSHClient, sudo bool, timeout time.Duration, log logger.Logger) *Remote {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Remote{Client: client, Sudo: sudo, Timeout: timeout, Log: log}
}

// Command renders argv as the exact line sent to the remote shell.
func (r *Remote) Command(name string, args ...string) string {
	return sshutil.WithSudo(util.ShellJoin(append([]string{name}, args...)...), r.Sudo)
}

// Run executes name with args on the remote node. Satisfies Runner.
func (r *Remote) Run(ctx context.Context, name string, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	line := r.Command(name, args...)
	start := time.Now()
	stdout, stderr, code, err := r.Client.Exec(ctx, line)
	r.Log.Debug("%s: %s -> %d (%s)", r.Client.GetHost(), line, code, time.Since(start).Round(time.Millisecond))

	return Result{
		Host:     r.Client.GetHost(),
		Command:  line,
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: code,
	}, err
}

// Upload copies a local file to the remote node, bounded by the same timeout.
func (r *Remote) Upload(ctx context.Context, localPath, remotePath string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	r.Log.Debug("%s: upload %s -> %s", r.Client.GetHost(), localPath, remotePath)
	return r.Client.Upload(ctx, localPath, remotePath)
}

func (r *Remote) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}
