package setup

import (
	"context"

	"github.com/rileyhilliard/georep/internal/endpoint"
	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/exec"
	"github.com/rileyhilliard/georep/internal/gluster"
	"github.com/rileyhilliard/georep/internal/ui"
	"github.com/rileyhilliard/georep/internal/util"
)

// SessionCreator issues the final create command on this node.
type SessionCreator struct {
	Local exec.Runner
	Out   *ui.Printer
}

// sessionArgs builds the create command. The secondary renders without a
// user part when the session runs as root.
func sessionArgs(primaryVolume string, secondary endpoint.Endpoint, force bool) []string {
	return gluster.CreateSessionArgs(primaryVolume, secondary.String(), force)
}

// Command renders the create command line.
func (s *SessionCreator) Command(primaryVolume string, secondary endpoint.Endpoint, force bool) string {
	return util.ShellJoin(append([]string{gluster.CLI}, sessionArgs(primaryVolume, secondary, force)...)...)
}

// Create runs `gluster volume geo-replication ... create no-verify [force]`.
func (s *SessionCreator) Create(ctx context.Context, primaryVolume string, secondary endpoint.Endpoint, force bool) error {
	const failMsg = "Failed to Establish Geo-replication Session"

	res, err := s.Local.Run(ctx, gluster.CLI, sessionArgs(primaryVolume, secondary, force)...)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSession, failMsg, "")
	}
	if !res.OK() {
		return exec.CommandError(errors.ErrSession, failMsg, res)
	}

	s.Out.OK("Geo-replication Session Established")
	return nil
}
