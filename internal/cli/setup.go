package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/georep/internal/capacity"
	"github.com/rileyhilliard/georep/internal/exec"
	"github.com/rileyhilliard/georep/internal/host"
	"github.com/rileyhilliard/georep/internal/lock"
	"github.com/rileyhilliard/georep/internal/logger"
	"github.com/rileyhilliard/georep/internal/setup"
	"github.com/rileyhilliard/georep/internal/ui"
	"github.com/rileyhilliard/georep/pkg/sshutil"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

// runSetup wires the real collaborators into a pipeline and runs it.
func runSetup(cmd *cobra.Command, primaryVolume, secondary string, g *globalFlags, r *runFlags) error {
	cfg, _, err := resolveConfig(cmd, g)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	mode, _ := ui.ParseColorMode(cfg.Color)
	out := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
	logger.SetDefault(logger.NewLogger("georep", g.Verbose))
	log := logger.Default()
	sshutil.WarningHandler = func(msg string) { out.Warn("%s", msg) }

	policy, _ := sshutil.ParseHostKeyPolicy(cfg.HostKeyChecking)
	local := exec.NewLocal(cfg.CommandTimeout, log)

	p := setup.New(setup.Options{
		PrimaryVolume:   primaryVolume,
		Secondary:       secondary,
		AdminUser:       cfg.SecondaryUser,
		Force:           r.Force,
		DryRun:          r.DryRun,
		SSHPort:         cfg.SSHPort,
		ConnectTimeout:  cfg.ConnectTimeout,
		CommandTimeout:  cfg.CommandTimeout,
		HostKeyPolicy:   policy,
		KnownHostsFile:  cfg.KnownHostsFile,
		GlusterdWorkdir: cfg.GlusterdWorkdir,
		CapacityBuffer:  cfg.CapacityBuffer,
	}, setup.Deps{
		Out:       out,
		Log:       log,
		Local:     local,
		Inspector: capacity.NewInspector(local, cfg.MountLogFile, log),
		Locker:    lock.NewManager(cfg.LockDir),
		Geteuid:   unix.Geteuid,
		Password:  contextPrompt(ctx, cmd.OutOrStdout()),
		Probe:     host.ProbeTCP,
		Dial: func(ctx context.Context, opts sshutil.DialOptions) (sshutil.SSHClient, error) {
			return sshutil.DialPassword(ctx, opts)
		},
	})

	start := time.Now()
	err = p.Run(ctx)
	log.Debug("run %s finished in %s", p.RunID, time.Since(start).Round(time.Millisecond))
	if err == nil {
		return nil
	}

	if interrupted(ctx, err) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Exiting..")
	} else {
		out.Error(err)
	}
	return &reportedError{err: err}
}

// interrupted reports whether the run stopped because the operator asked it to.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || stderrors.Is(err, ui.ErrPromptAborted)
}

// contextPrompt returns a password reader that gives up when ctx is done.
// A blocked terminal read is abandoned; the process exits right after.
func contextPrompt(ctx context.Context, w io.Writer) func(ui.PasswordPrompt) (string, error) {
	return func(p ui.PasswordPrompt) (string, error) {
		type answer struct {
			password string
			err      error
		}
		ch := make(chan answer, 1)
		go func() {
			pw, err := ui.PromptPassword(p, w)
			ch <- answer{pw, err}
		}()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case a := <-ch:
			return a.password, a.err
		}
	}
}
