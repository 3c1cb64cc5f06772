package sshutil

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rileyhilliard/georep/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Exec runs a command on the remote host and returns the output.
// Returns stdout, stderr, exit code, and any error.
// Exit code is -1 if the command couldn't be executed at all, including
// when ctx expires before the command finishes.
func (c *Client) Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrTransport,
			"Failed to create SSH session",
			"Connection may have been closed. Re-run the setup.")
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	if err := session.Start(cmd); err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Failed to start command: %s", cmd),
			"Check the SSH connection to the secondary node.")
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		return stdoutBuf.Bytes(), stderrBuf.Bytes(), -1, errors.WrapWithCode(ctx.Err(), errors.ErrTransport,
			fmt.Sprintf("Command did not finish: %s", cmd),
			"Raise command_timeout if the secondary cluster is slow to respond.")
	case err = <-done:
	}

	if err != nil {
		if exitErr, ok := err.(*ssh.ExitError); ok {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitErr.ExitStatus(), nil
		}
		return stdoutBuf.Bytes(), stderrBuf.Bytes(), -1, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Failed to execute command: %s", cmd),
			"The SSH channel closed before the command reported an exit status.")
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, nil
}

// WithSudo prefixes cmd with sudo when sudo is true.
func WithSudo(cmd string, sudo bool) string {
	if !sudo {
		return cmd
	}
	return "sudo " + cmd
}
