// Package gluster is the catalogue of control-plane commands the setup
// pipeline issues, plus parsers for their output. Argument lists are
// returned as argv so the same builder serves local execution and remote
// command lines.
package gluster

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/exec"
	"github.com/rileyhilliard/georep/internal/logger"
)

const (
	// CLI is the gluster control-plane binary.
	CLI = "gluster"
	// MountCLI is the FUSE client used for temporary mounts.
	MountCLI = "glusterfs"

	// DefaultWorkdir is glusterd's working directory when getwd fails.
	DefaultWorkdir = "/var/lib/glusterd"
	// GeoRepSubdir holds geo-replication state under the working directory.
	GeoRepSubdir = "geo-replication"
	// CommonSecretFile is what gsec_create writes into GeoRepSubdir.
	CommonSecretFile = "common_secret.pem.pub"

	// DefaultMountLog is the client log for temporary capacity mounts.
	DefaultMountLog = "/var/log/glusterfs/geo-replication/georepsetup.mount.log"
)

// VersionArgs reports the installed version.
func VersionArgs() []string {
	return []string{"--version"}
}

// GetwdArgs asks glusterd for its working directory.
func GetwdArgs() []string {
	return []string{"system::", "getwd"}
}

// GsecCreateArgs generates pem keys on every primary node and collects
// the public halves into the common secret file.
func GsecCreateArgs() []string {
	return []string{"system::", "execute", "gsec_create"}
}

// CopyFileArgs pushes a file under the working directory to every peer
// that is currently up. The path is relative to the working directory.
func CopyFileArgs(pubFile string) []string {
	return []string{"system::", "copy", "file", "/" + path.Join(GeoRepSubdir, pubFile)}
}

// AddSecretPubArgs appends the distributed keys to user's authorized_keys
// on every peer.
func AddSecretPubArgs(user, pubFile string) []string {
	return []string{"system::", "execute", "add_secret_pub", user, path.Join(GeoRepSubdir, pubFile)}
}

// CreateSessionArgs creates the geo-replication session. secondary is the
// compound [user@]host::volume form. no-verify is always set because the
// checks it would run have already been done by this tool.
func CreateSessionArgs(primaryVolume, secondary string, force bool) []string {
	args := []string{"volume", "geo-replication", primaryVolume, secondary, "create", "no-verify"}
	if force {
		args = append(args, "force")
	}
	return args
}

// MountArgs mounts host:volume at dir with lookup-unhashed disabled and a
// negative client pid so the mount bypasses gsyncd-related checks.
func MountArgs(host, volume, logFile, dir string) []string {
	return []string{
		"--xlator-option=*dht.lookup-unhashed=off",
		"--volfile-server", host,
		"--volfile-id", volume,
		"-l", logFile,
		"--client-pid=-1",
		dir,
	}
}

// GeoRepDir returns the geo-replication directory under workdir.
func GeoRepDir(workdir string) string {
	return path.Join(workdir, GeoRepSubdir)
}

// CommonSecretPath returns where gsec_create leaves the common secret.
func CommonSecretPath(workdir string) string {
	return path.Join(GeoRepDir(workdir), CommonSecretFile)
}

// ParseVersion extracts the version from `gluster --version` output: the
// second whitespace-separated field of the first line.
func ParseVersion(out []byte) (string, error) {
	line := strings.TrimSpace(string(out))
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", fmt.Errorf("unexpected version output %q", line)
	}
	return fields[1], nil
}

// Version runs `gluster --version` through r and parses the result.
// where names the cluster ("Primary", "Secondary") in error messages.
func Version(ctx context.Context, r exec.Runner, where string) (string, error) {
	res, err := r.Run(ctx, CLI, VersionArgs()...)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrVersion,
			fmt.Sprintf("Failed to get Gluster version from %s Cluster", where),
			"")
	}
	if !res.OK() {
		return "", exec.CommandError(errors.ErrVersion, fmt.Sprintf("Unable to get %s Gluster Version", where), res)
	}

	v, err := ParseVersion(res.Stdout)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrVersion,
			fmt.Sprintf("Unable to get %s Gluster Version", where),
			"")
	}
	return v, nil
}

// Workdir asks glusterd for its working directory through r, falling back
// to DefaultWorkdir when the query fails or prints nothing.
func Workdir(ctx context.Context, r exec.Runner, log logger.Logger) string {
	res, err := r.Run(ctx, CLI, GetwdArgs()...)
	if err != nil || !res.OK() {
		if log != nil {
			log.Debug("getwd failed (exit %d, err %v), using %s", res.ExitCode, err, DefaultWorkdir)
		}
		return DefaultWorkdir
	}
	wd := strings.TrimSpace(string(res.Stdout))
	if wd == "" || !strings.HasPrefix(wd, "/") {
		return DefaultWorkdir
	}
	return wd
}
