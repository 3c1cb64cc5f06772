package setup

import (
	"testing"

	"github.com/rileyhilliard/georep/internal/endpoint"
	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/exec"
	sshtesting "github.com/rileyhilliard/georep/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubFileName(t *testing.T) {
	assert.Equal(t, "primary1_secondary1_common_secret.pem.pub", PubFileName("primary1", "secondary1"))
}

func TestHomeDir(t *testing.T) {
	assert.Equal(t, "/root", HomeDir(endpoint.DefaultUser))
	assert.Equal(t, "/root", HomeDir("root"))
	assert.Equal(t, "/home/geoaccount", HomeDir("geoaccount"))
}

func TestBootstrap_StepFailures(t *testing.T) {
	tests := []struct {
		name    string
		arrange func(f *fixture)
		message string
		// later lists remote command fragments that must not have run.
		later []string
	}{
		{
			name: "gsec_create fails",
			arrange: func(f *fixture) {
				f.local.responses["gluster system:: execute gsec_create"] = exec.Result{
					ExitCode: 1, Stderr: []byte("gsec_create: pem generation failed on primary2"),
				}
				f.local.hooks = map[string]func(){}
			},
			message: "Common secret pub file generation failed",
			later:   []string{"cp ", "copy file", "add_secret_pub"},
		},
		{
			name: "upload fails",
			arrange: func(f *fixture) {
				f.remote.SetUploadError(assert.AnError)
			},
			message: "Unable to copy common_secret.pem.pub to secHost",
			later:   []string{"cp ", "copy file", "add_secret_pub"},
		},
		{
			name: "cp into workdir fails",
			arrange: func(f *fixture) {
				f.remote.SetCommandResponse(`^(sudo )?cp `, sshtesting.CommandResponse{
					ExitCode: 1, Stderr: []byte("cp: cannot create regular file: Permission denied"),
				})
			},
			message: "Unable to copy common_secret.pem.pub to secHost",
			later:   []string{"copy file", "add_secret_pub"},
		},
		{
			name: "copy file fails",
			arrange: func(f *fixture) {
				f.remote.SetCommandResponse(`copy file`, sshtesting.CommandResponse{
					ExitCode: 1, Stderr: []byte("copy file failed on secondary2"),
				})
			},
			message: "Unable to copy Primary SSH Keys to all Up Secondary nodes",
			later:   []string{"add_secret_pub"},
		},
		{
			name: "add_secret_pub fails",
			arrange: func(f *fixture) {
				f.remote.SetCommandResponse(`add_secret_pub`, sshtesting.CommandResponse{
					ExitCode: 2, Stderr: []byte("user geo does not exist"),
				})
			},
			message: "Unable to update Primary SSH Keys to all Up Secondary nodes authorized_keys file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.arrange(f)

			err := f.run()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrBootstrap), "got %v", err)
			assert.Contains(t, err.Error(), tt.message)

			for _, fragment := range tt.later {
				assert.False(t, f.remoteRan(fragment), "%q ran after the failure", fragment)
			}
			assert.False(t, f.local.ran(createLine))
			assert.Equal(t, 2, f.insp.mounts, "both volumes inspected before bootstrap")
			assert.True(t, f.insp.allReleased(), "a mount outlived the capacity stage")
			assert.True(t, f.locks.AllReleased())
			assert.True(t, f.remote.IsClosed())
		})
	}
}

func TestBootstrap_FailureDetail(t *testing.T) {
	f := newFixture(t)
	f.remote.SetCommandResponse(`copy file`, sshtesting.CommandResponse{
		ExitCode: 1, Stderr: []byte("copy file failed on secondary2\n"),
	})

	err := f.run()
	require.Error(t, err)

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "copy file failed on secondary2", e.Detail())
}

func TestBootstrap_Plan(t *testing.T) {
	f := newFixture(t)
	b := &Bootstrapper{
		Remote:           newRemoteFor(f.remote, true),
		PrimaryWorkdir:   "/var/lib/glusterd",
		SecondaryWorkdir: "/var/lib/glusterd",
		SecondaryHost:    "secHost",
		AdminUser:        "geoadmin",
		SessionUser:      "geo",
		PubFile:          pubFile,
	}

	assert.Equal(t, []string{
		"gluster system:: execute gsec_create",
		"sftp put /var/lib/glusterd/geo-replication/common_secret.pem.pub secHost:/home/geoadmin/" + pubFile,
		"secHost: sudo cp /home/geoadmin/" + pubFile + " /var/lib/glusterd/geo-replication/" + pubFile,
		"secHost: sudo gluster system:: copy file /geo-replication/" + pubFile,
		"secHost: sudo gluster system:: execute add_secret_pub geo geo-replication/" + pubFile,
	}, b.Plan())
}

func TestSessionCreator_Failure(t *testing.T) {
	f := newFixture(t)
	f.local.responses[createLine] = exec.Result{
		ExitCode: 1,
		Stderr:   []byte("Unable to fetch secondary volume details. Please check the secondary cluster and secondary volume.\ngeo-replication command failed"),
	}

	err := f.run()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSession))
	assert.Contains(t, err.Error(), "Failed to Establish Geo-replication Session")
	assert.Contains(t, err.Error(), "geo-replication command failed")
	assert.NotContains(t, f.out.String(), "Geo-replication Session Established")
}

func newRemoteFor(client *sshtesting.MockClient, sudo bool) *exec.Remote {
	return exec.NewRemote(client, sudo, 0, nil)
}
