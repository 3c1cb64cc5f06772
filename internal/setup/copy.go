package setup

import (
	"context"
	"fmt"
	"path"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/exec"
	"github.com/rileyhilliard/georep/internal/gluster"
)

// uploadPath is where the common secret lands on the entry node first.
func (b *Bootstrapper) uploadPath() string {
	return path.Join(HomeDir(b.AdminUser), b.PubFile)
}

// stagedPath is where glusterd's copy file primitive expects it.
func (b *Bootstrapper) stagedPath() string {
	return path.Join(gluster.GeoRepDir(b.SecondaryWorkdir), b.PubFile)
}

// Transfer uploads the common secret to the entry node and moves it into
// the geo-replication directory there. The copy runs through sudo for a
// non-root admin, which is why the upload goes to the home directory first.
func (b *Bootstrapper) Transfer(ctx context.Context) error {
	src := gluster.CommonSecretPath(b.PrimaryWorkdir)
	failMsg := fmt.Sprintf("Unable to copy %s to %s", gluster.CommonSecretFile, b.SecondaryHost)

	if err := b.Remote.Upload(ctx, src, b.uploadPath()); err != nil {
		return errors.WrapWithCode(err, errors.ErrBootstrap, failMsg, "")
	}

	res, err := b.Remote.Run(ctx, "cp", b.uploadPath(), b.stagedPath())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrBootstrap, failMsg, "")
	}
	if !res.OK() {
		return exec.CommandError(errors.ErrBootstrap, failMsg, res)
	}

	b.Out.OK("%s file copied to %s", gluster.CommonSecretFile, b.SecondaryHost)
	return nil
}

// Distribute fans the file out to every secondary peer that is up. Success
// means the primitive exited 0; peers that were down are not covered.
func (b *Bootstrapper) Distribute(ctx context.Context) error {
	return b.remoteStep(ctx,
		"Primary SSH Keys copied to all Up Secondary nodes",
		"Unable to copy Primary SSH Keys to all Up Secondary nodes",
		gluster.CLI, gluster.CopyFileArgs(b.PubFile)...)
}
