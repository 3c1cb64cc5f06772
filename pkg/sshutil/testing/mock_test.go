package testing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockFS_WriteReadCopy(t *testing.T) {
	fs := NewMockFS()
	require.NoError(t, fs.WriteFile("/root/a.pub", []byte("key")))

	content, err := fs.ReadFile("/root/a.pub")
	require.NoError(t, err)
	assert.Equal(t, "key", string(content))

	require.NoError(t, fs.Copy("/root/a.pub", "/var/lib/glusterd/geo-replication/a.pub"))
	assert.True(t, fs.IsFile("/var/lib/glusterd/geo-replication/a.pub"))

	assert.Error(t, fs.Copy("/missing", "/x"))
	_, err = fs.ReadFile("/missing")
	assert.Error(t, err)
}

func TestMockClient_RecordsCommandsInOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMockClient("secHost")

	for _, cmd := range []string{"gluster --version", "sudo gluster system:: getwd", "true"} {
		_, _, code, err := m.Exec(ctx, cmd)
		require.NoError(t, err)
		assert.Equal(t, 0, code)
	}

	assert.Equal(t, []string{"gluster --version", "sudo gluster system:: getwd", "true"}, m.Commands())
}

func TestMockClient_CommandResponses(t *testing.T) {
	ctx := context.Background()
	m := NewMockClient("secHost")
	m.SetCommandResponse(`gluster system:: copy file .*`, CommandResponse{ExitCode: 2, Stderr: []byte("peer down")})
	m.SetCommandResponse("gluster system:: copy file /geo-replication/x.pub", CommandResponse{ExitCode: 0})

	_, _, code, err := m.Exec(ctx, "gluster system:: copy file /geo-replication/x.pub")
	require.NoError(t, err)
	assert.Equal(t, 0, code, "exact match wins over an earlier pattern")

	_, stderr, code, err := m.Exec(ctx, "sudo gluster system:: copy file /geo-replication/y.pub")
	require.NoError(t, err)
	assert.Equal(t, 2, code)
	assert.Equal(t, "peer down", string(stderr))
}

func TestMockClient_CustomError(t *testing.T) {
	m := NewMockClient("secHost")
	m.SetCommandResponse("^gluster", CommandResponse{ExitCode: -1, Error: errors.New("channel closed")})

	_, _, code, err := m.Exec(context.Background(), "gluster --version")
	assert.Error(t, err)
	assert.Equal(t, -1, code)
}

func TestWithVersion(t *testing.T) {
	m := NewMockClient("secHost")
	WithVersion(m, "11.1")

	for _, cmd := range []string{"gluster --version", "sudo gluster --version"} {
		stdout, _, code, err := m.Exec(context.Background(), cmd)
		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Contains(t, string(stdout), "glusterfs 11.1\n")
	}
}

func TestMockClient_UploadThenCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMockClient("secHost")

	local := filepath.Join(t.TempDir(), "common_secret.pem.pub")
	require.NoError(t, os.WriteFile(local, []byte("command=... ssh-rsa AAAA root@primary\n"), 0600))

	require.NoError(t, m.Upload(ctx, local, "/home/geo/p_s_common_secret.pem.pub"))
	_, _, code, err := m.Exec(ctx, "sudo cp /home/geo/p_s_common_secret.pem.pub /var/lib/glusterd/geo-replication/p_s_common_secret.pem.pub")
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	content, err := m.GetFS().ReadFile("/var/lib/glusterd/geo-replication/p_s_common_secret.pem.pub")
	require.NoError(t, err)
	assert.Contains(t, string(content), "root@primary")

	uploads := m.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "/home/geo/p_s_common_secret.pem.pub", uploads[0].RemotePath)
}

func TestMockClient_CopyMissingSource(t *testing.T) {
	m := NewMockClient("secHost")

	_, stderr, code, err := m.Exec(context.Background(), "cp /root/missing.pub /tmp/x.pub")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, string(stderr), "cannot stat")
}

func TestMockClient_UploadError(t *testing.T) {
	m := NewMockClient("secHost")
	m.SetUploadError(errors.New("permission denied"))

	err := m.Upload(context.Background(), "/nonexistent", "/root/x")
	assert.EqualError(t, err, "permission denied")
	assert.Len(t, m.Uploads(), 1)
}

func TestMockClient_Close(t *testing.T) {
	m := NewMockClient("secHost")
	require.NoError(t, m.Close())
	assert.True(t, m.IsClosed())

	_, _, code, err := m.Exec(context.Background(), "true")
	assert.Error(t, err)
	assert.Equal(t, -1, code)
}

func TestMockClient_CancelledContext(t *testing.T) {
	m := NewMockClient("secHost")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, code, err := m.Exec(ctx, "true")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, -1, code)
	assert.Empty(t, m.Commands())
}

func TestMockClient_Identity(t *testing.T) {
	m := NewMockClient("secHost")
	m.SetUser("geo")

	assert.Equal(t, "secHost", m.GetHost())
	assert.Equal(t, "secHost:22", m.GetAddress())
	assert.Equal(t, "geo", m.GetUser())
}

func TestHelpers_WithFiles(t *testing.T) {
	m := NewMockClient("secHost")
	WithFiles(m, map[string]string{"/root/a": "1"})
	assert.True(t, m.GetFS().IsFile("/root/a"))
}
