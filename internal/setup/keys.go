package setup

import (
	"context"
	"fmt"
	"path"

	"github.com/rileyhilliard/georep/internal/endpoint"
	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/exec"
	"github.com/rileyhilliard/georep/internal/gluster"
)

// PubFileName is the pair-specific name the common secret travels under on
// the secondary cluster, so setups for different pairs don't collide.
func PubFileName(primaryVolume, secondaryVolume string) string {
	return fmt.Sprintf("%s_%s_%s", primaryVolume, secondaryVolume, gluster.CommonSecretFile)
}

// HomeDir returns the home directory the upload lands in for user.
func HomeDir(user string) string {
	if user == endpoint.DefaultUser {
		return "/root"
	}
	return path.Join("/home", user)
}

// Generate runs gsec_create on this node.
func (b *Bootstrapper) Generate(ctx context.Context) error {
	res, err := b.Local.Run(ctx, gluster.CLI, gluster.GsecCreateArgs()...)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrBootstrap,
			"Common secret pub file generation failed", "")
	}
	if !res.OK() {
		return exec.CommandError(errors.ErrBootstrap, "Common secret pub file generation failed", res)
	}

	b.Out.OK("Common secret pub file present at %s", gluster.CommonSecretPath(b.PrimaryWorkdir))
	return nil
}

// Install appends the distributed keys to the session user's
// authorized_keys on every secondary peer that received them.
func (b *Bootstrapper) Install(ctx context.Context) error {
	return b.remoteStep(ctx,
		"Updated Primary SSH Keys to all Up Secondary nodes authorized_keys file",
		"Unable to update Primary SSH Keys to all Up Secondary nodes authorized_keys file",
		gluster.CLI, gluster.AddSecretPubArgs(b.SessionUser, b.PubFile)...)
}

// remoteStep runs one command on the entry node and prints okMsg on
// success. Transport errors and non-zero exits both fail with failMsg.
func (b *Bootstrapper) remoteStep(ctx context.Context, okMsg, failMsg, name string, args ...string) error {
	res, err := b.Remote.Run(ctx, name, args...)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrBootstrap, failMsg, "")
	}
	if !res.OK() {
		return exec.CommandError(errors.ErrBootstrap, failMsg, res)
	}
	b.Out.OK("%s", okMsg)
	return nil
}
