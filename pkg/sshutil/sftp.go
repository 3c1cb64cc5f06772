package sshutil

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/sftp"
	"github.com/rileyhilliard/georep/internal/errors"
)

// Upload copies localPath to remotePath over an SFTP subsystem on the
// existing connection. The remote file is created or truncated.
func (c *Client) Upload(ctx context.Context, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Cannot read %s", localPath),
			"Check the file exists on this node")
	}
	defer src.Close()

	client, err := sftp.NewClient(c.Client)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Couldn't start SFTP on %s", c.Host),
			"Make sure the sftp subsystem is enabled in the secondary node's sshd_config")
	}
	defer client.Close()

	done := make(chan error, 1)
	go func() {
		dst, err := client.Create(remotePath)
		if err != nil {
			done <- err
			return
		}
		if _, err := io.Copy(dst, src); err != nil {
			dst.Close()
			done <- err
			return
		}
		done <- dst.Close()
	}()

	select {
	case <-ctx.Done():
		// Closing the SFTP client unblocks the copy goroutine.
		client.Close()
		return errors.WrapWithCode(ctx.Err(), errors.ErrTransport,
			fmt.Sprintf("Upload to %s:%s did not finish", c.Host, remotePath),
			"Raise command_timeout if the link to the secondary is slow.")
	case err := <-done:
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrTransport,
				fmt.Sprintf("Failed to copy %s to %s:%s", localPath, c.Host, remotePath),
				"Check the secondary user's home directory exists and is writable")
		}
	}
	return nil
}
