package exec

import (
	stderrors "errors"
	"testing"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCommandNotFound(t *testing.T) {
	tests := []struct {
		name      string
		stderr    string
		exitCode  int
		wantCmd   string
		wantFound bool
	}{
		{
			name:      "bash command not found",
			stderr:    "bash: gluster: command not found",
			exitCode:  127,
			wantCmd:   "gluster",
			wantFound: true,
		},
		{
			name:      "sh not found",
			stderr:    "sh: 1: gluster: not found",
			exitCode:  127,
			wantCmd:   "gluster",
			wantFound: true,
		},
		{
			name:      "sudo command not found",
			stderr:    "sudo: gluster: command not found",
			exitCode:  127,
			wantCmd:   "gluster",
			wantFound: true,
		},
		{
			name:      "exit code 127 no pattern match",
			stderr:    "something else",
			exitCode:  127,
			wantCmd:   "",
			wantFound: true,
		},
		{
			name:      "normal failure",
			stderr:    "Volume secondary1 does not exist",
			exitCode:  1,
			wantFound: false,
		},
		{
			name:      "success",
			exitCode:  0,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, found := IsCommandNotFound(tt.stderr, tt.exitCode)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantCmd, cmd)
		})
	}
}

func TestIsSudoDenied(t *testing.T) {
	assert.True(t, IsSudoDenied("sudo: a terminal is required to read the password"))
	assert.True(t, IsSudoDenied("sudo: a password is required"))
	assert.True(t, IsSudoDenied("geo is not in the sudoers file.  This incident will be reported."))
	assert.False(t, IsSudoDenied("peer probe failed"))
}

func TestHint(t *testing.T) {
	t.Run("command not found", func(t *testing.T) {
		hint := Hint(Result{Host: "secHost", Command: "sudo gluster --version", Stderr: []byte("sh: 1: gluster: not found"), ExitCode: 127})
		assert.Contains(t, hint, "'gluster' not found in PATH on secHost")
		assert.Contains(t, hint, "glusterfs-server")
	})

	t.Run("name falls back to first non-sudo word", func(t *testing.T) {
		hint := Hint(Result{Host: "h", Command: "sudo gluster system:: getwd", ExitCode: 127})
		assert.Contains(t, hint, "'gluster' not found")
	})

	t.Run("sudo denied", func(t *testing.T) {
		hint := Hint(Result{Host: "secHost", Command: "sudo cp a b", Stderr: []byte("sudo: a terminal is required to read the password"), ExitCode: 1})
		assert.Contains(t, hint, "NOPASSWD")
	})

	t.Run("nothing specific", func(t *testing.T) {
		assert.Empty(t, Hint(Result{Command: "cp a b", Stderr: []byte("disk full"), ExitCode: 1}))
	})
}

func TestCommandError(t *testing.T) {
	err := CommandError(errors.ErrBootstrap, "Unable to copy Primary SSH Keys to all Up Secondary nodes",
		Result{Host: "secHost", Command: "gluster system:: copy file /geo-replication/x", Stderr: []byte("node3 is down\n"), ExitCode: 1})

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.ErrBootstrap, e.Code)
	assert.Equal(t, "Unable to copy Primary SSH Keys to all Up Secondary nodes", e.Message)
	assert.Equal(t, "node3 is down", e.Detail())
}

func TestCommandError_NoOutput(t *testing.T) {
	err := CommandError(errors.ErrSession, "Failed", Result{Command: "gluster volume geo-replication", ExitCode: 2})
	assert.Contains(t, err.Error(), "gluster volume geo-replication exited with status 2")
}
