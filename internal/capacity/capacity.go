// Package capacity measures a volume's size by mounting it temporarily on
// this node. Every mount is released before Inspect returns, on success,
// failure and cancellation alike.
package capacity

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/exec"
	"github.com/rileyhilliard/georep/internal/gluster"
	"github.com/rileyhilliard/georep/internal/logger"
	"golang.org/x/sys/unix"
)

// TempPrefix names the temporary mount directories.
const TempPrefix = "georepsetup_"

// trashDir is ignored when deciding whether a volume is empty.
const trashDir = ".trashcan"

// Snapshot is the size of one volume at one instant, in bytes.
type Snapshot struct {
	Host   string
	Volume string
	Total  uint64
	Used   uint64
	Empty  bool
}

// Available returns Total minus Used.
func (s *Snapshot) Available() uint64 {
	if s.Used > s.Total {
		return 0
	}
	return s.Total - s.Used
}

// Inspector mounts volumes and reads their statistics.
type Inspector struct {
	Runner   exec.Runner
	MountLog string
	// TempDir is the parent of mount directories; empty means os.TempDir.
	TempDir string
	Log     logger.Logger

	statfs       func(path string) (total, used uint64, err error)
	isMountPoint func(path string) (bool, error)
}

// NewInspector returns an Inspector that mounts with r.
func NewInspector(r exec.Runner, mountLog string, log logger.Logger) *Inspector {
	if mountLog == "" {
		mountLog = gluster.DefaultMountLog
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Inspector{
		Runner:       r,
		MountLog:     mountLog,
		Log:          log,
		statfs:       statfs,
		isMountPoint: isMountPoint,
	}
}

// Mount is an acquired temporary mount. Release must be called exactly once.
type Mount struct {
	Dir    string
	Host   string
	Volume string

	insp     *Inspector
	released bool
}

// Mount creates a temporary directory and mounts host:volume on it.
// On failure nothing is left behind.
func (i *Inspector) Mount(ctx context.Context, host, volume string) (*Mount, error) {
	dir, err := os.MkdirTemp(i.TempDir, TempPrefix)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCapacity,
			"Unable to create a temporary mount directory",
			"Check free space and permissions of the temp directory")
	}

	fail := func(cause error) (*Mount, error) {
		_ = os.Remove(dir)
		return nil, errors.WrapWithCode(cause, errors.ErrTransport,
			fmt.Sprintf("Unable to Mount Gluster Volume %s:%s", host, volume),
			fmt.Sprintf("See %s for the client log", i.MountLog))
	}

	res, err := i.Runner.Run(ctx, gluster.MountCLI, gluster.MountArgs(host, volume, i.MountLog, dir)...)
	if err != nil {
		return fail(err)
	}
	if !res.OK() {
		return fail(fmt.Errorf("glusterfs exited %d: %s", res.ExitCode, res.Detail()))
	}

	mounted, err := i.isMountPoint(dir)
	if err != nil {
		return fail(err)
	}
	if !mounted {
		return fail(stderrors.New("mount command succeeded but nothing is mounted"))
	}

	i.Log.Debug("mounted %s:%s at %s", host, volume, dir)
	return &Mount{Dir: dir, Host: host, Volume: volume, insp: i}, nil
}

// Release unmounts and removes the directory. It runs even when ctx is
// already cancelled so an interrupted run does not leave a stale mount.
// The directory is only removed after a successful unmount.
func (m *Mount) Release(ctx context.Context) error {
	if m.released {
		return nil
	}
	m.released = true

	ctx = context.WithoutCancel(ctx)
	res, err := m.insp.Runner.Run(ctx, "umount", m.Dir)
	if err == nil && !res.OK() {
		err = fmt.Errorf("umount exited %d: %s", res.ExitCode, res.Detail())
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrCapacity,
			fmt.Sprintf("Unable to Unmount Gluster Volume %s:%s(Mounted at %s)", m.Host, m.Volume, m.Dir),
			fmt.Sprintf("Run 'umount %s' by hand", m.Dir))
	}

	if err := os.Remove(m.Dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrCapacity,
			fmt.Sprintf("Unable to Remove temp directory %s", m.Dir),
			"")
	}
	m.insp.Log.Debug("released %s", m.Dir)
	return nil
}

// Inspect mounts host:volume, records its size and emptiness, and releases
// the mount. A release failure is returned only when nothing else failed.
func (i *Inspector) Inspect(ctx context.Context, host, volume string) (snap *Snapshot, err error) {
	m, err := i.Mount(ctx, host, volume)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := m.Release(ctx); rerr != nil {
			if err == nil {
				snap, err = nil, rerr
				return
			}
			i.Log.Warn("%v", rerr)
		}
	}()

	total, used, err := i.statfs(m.Dir)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCapacity,
			fmt.Sprintf("Unable to get Disk size and Used size of %s::%s", host, volume),
			"")
	}

	empty, err := isEmpty(m.Dir)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCapacity,
			fmt.Sprintf("Unable to count number of files in %s::%s", host, volume),
			"")
	}

	snap = &Snapshot{Host: host, Volume: volume, Total: total, Used: used, Empty: empty}
	i.Log.Debug("%s::%s total=%d used=%d available=%d empty=%v",
		host, volume, snap.Total, snap.Used, snap.Available(), snap.Empty)
	return snap, nil
}

// isEmpty reports whether dir has no entries other than the trash
// directory. It stops at the first real entry.
func isEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()

	for {
		entries, err := f.ReadDir(64)
		for _, e := range entries {
			if e.Name() != trashDir {
				return false, nil
			}
		}
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, err
		}
	}
}

// statfs returns total bytes and used bytes as seen by an unprivileged
// user: used counts reserved blocks.
func statfs(path string) (total, used uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	total = st.Blocks * bsize
	used = (st.Blocks - st.Bavail) * bsize
	return total, used, nil
}

// isMountPoint reports whether path sits on a different device than its parent.
func isMountPoint(path string) (bool, error) {
	var self, parent unix.Stat_t
	if err := unix.Stat(path, &self); err != nil {
		return false, err
	}
	if err := unix.Stat(filepath.Dir(filepath.Clean(path)), &parent); err != nil {
		return false, err
	}
	return self.Dev != parent.Dev || self.Ino == parent.Ino, nil
}
