package setup

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/georep/internal/exec"
	"github.com/rileyhilliard/georep/internal/gluster"
	"github.com/rileyhilliard/georep/internal/logger"
	"github.com/rileyhilliard/georep/internal/ui"
	"github.com/rileyhilliard/georep/internal/util"
)

// RemoteRunner is the channel to the secondary entry node.
type RemoteRunner interface {
	exec.Runner
	Upload(ctx context.Context, localPath, remotePath string) error
	Command(name string, args ...string) string
}

// Bootstrapper provisions trust on the secondary cluster. See the package
// documentation for the protocol.
type Bootstrapper struct {
	Local  exec.Runner
	Remote RemoteRunner
	Out    *ui.Printer
	Log    logger.Logger

	PrimaryWorkdir   string
	SecondaryWorkdir string
	SecondaryHost    string
	// AdminUser is who the SSH session is logged in as.
	AdminUser string
	// SessionUser is who the geo-replication session will run as.
	SessionUser string
	PubFile     string
}

// Step is one bootstrap operation.
type Step struct {
	Name string
	Run  func(context.Context) error
}

// Steps returns the bootstrap operations in the order they must run.
func (b *Bootstrapper) Steps() []Step {
	return []Step{
		{Name: "generate", Run: b.Generate},
		{Name: "transfer", Run: b.Transfer},
		{Name: "distribute", Run: b.Distribute},
		{Name: "install", Run: b.Install},
	}
}

// Run executes every step in order and stops at the first failure.
func (b *Bootstrapper) Run(ctx context.Context) error {
	for _, step := range b.Steps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.Log.Debug("bootstrap: %s", step.Name)
		if err := step.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Plan returns the commands Run would issue, one line per action.
func (b *Bootstrapper) Plan() []string {
	return []string{
		util.ShellJoin(append([]string{gluster.CLI}, gluster.GsecCreateArgs()...)...),
		fmt.Sprintf("sftp put %s %s:%s", gluster.CommonSecretPath(b.PrimaryWorkdir), b.SecondaryHost, b.uploadPath()),
		fmt.Sprintf("%s: %s", b.SecondaryHost, b.Remote.Command("cp", b.uploadPath(), b.stagedPath())),
		fmt.Sprintf("%s: %s", b.SecondaryHost, b.Remote.Command(gluster.CLI, gluster.CopyFileArgs(b.PubFile)...)),
		fmt.Sprintf("%s: %s", b.SecondaryHost, b.Remote.Command(gluster.CLI, gluster.AddSecretPubArgs(b.SessionUser, b.PubFile)...)),
	}
}
