package sshutil

import "context"

// SSHClient defines the interface for the authenticated channel to the
// secondary entry node. Both the real Client and the mock in
// pkg/sshutil/testing satisfy it.
type SSHClient interface {
	// Exec runs a command and returns stdout, stderr, and exit code.
	// Exit code is -1 if the command couldn't be executed at all.
	// A non-zero exit code with nil error means the command ran but failed.
	Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error)

	// Upload copies a single local file to remotePath over SFTP.
	Upload(ctx context.Context, localPath, remotePath string) error

	// Close closes the SSH connection.
	Close() error

	// GetHost returns the host as given by the caller.
	GetHost() string

	// GetAddress returns the resolved host:port address.
	GetAddress() string

	// GetUser returns the user the connection authenticated as.
	GetUser() string
}
