package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/signalctx"
	"github.com/rileyhilliard/georep/internal/ui"
	"github.com/spf13/cobra"
)

const usageLine = "georep-setup <primary-volume> <[user@]host::volume>"

// reportedError marks a failure whose status lines were already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	var (
		global globalFlags
		run    runFlags
	)

	cmd := &cobra.Command{
		Use:   usageLine,
		Short: "Set up a GlusterFS geo-replication session",
		Long: `Set up a GlusterFS geo-replication session between a local primary
volume and a volume on a remote secondary cluster.

Run on a node of the primary cluster, as root. The secondary admin user's
password is asked once and never stored. Before anything is changed on the
secondary cluster the tool checks that both clusters run the same glusterfs
version, that the secondary volume is large enough and that it is empty.
It then distributes the primary cluster's SSH keys to every secondary node
that is up and creates the session.

Examples:
  georep-setup gv0 backup.example.com::gv0-dr
  georep-setup gv0 geoaccount@backup.example.com::gv0-dr
  georep-setup --secondary-user geoadmin gv0 geoaccount@backup::gv0-dr
  georep-setup --dry-run gv0 backup::gv0-dr`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New(errors.ErrParse,
					fmt.Sprintf("Expected 2 arguments, got %d", len(args)),
					"Usage: "+usageLine)
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, args[0], args[1], &global, &run)
		},
	}

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.WrapWithCode(err, errors.ErrParse, "Invalid command line",
			"Run 'georep-setup --help' for usage.")
	})

	addGlobalFlags(cmd, &global)
	addRunFlags(cmd, &run)

	cmd.AddCommand(newConfigCmd(&global))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the CLI and exits the process with the resulting status.
func Execute() {
	ctx, w := signalctx.WithSignals(context.Background())
	err := newRootCmd().ExecuteContext(ctx)
	w.Stop()

	if err == nil {
		return
	}
	var reported *reportedError
	if !stderrors.As(err, &reported) {
		ui.NewPrinter(os.Stdout, os.Stderr, ui.ColorAuto).Error(err)
	}
	os.Exit(errors.ExitCode(err))
}
