// Package lock serializes setup runs for the same volume pair on one node.
// Two administrators running the pipeline for one pair at the same time
// would race on the common secret file and on the session create call.
package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/rileyhilliard/georep/internal/errors"
)

// DefaultDir is where lock files live when no lock_dir is configured.
const DefaultDir = "/var/run"

// Releaser is an acquired lock.
type Releaser interface {
	Release() error
}

// Locker hands out locks keyed by volume pair.
type Locker interface {
	Acquire(pair string, info *LockInfo) (Releaser, error)
}

// Manager creates flock-based lock files under Dir.
type Manager struct {
	Dir string
}

// Lock is a held file lock.
type Lock struct {
	Path string
	Info *LockInfo
	fl   *flock.Flock
}

// NewManager returns a Manager rooted at dir, or DefaultDir when empty.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	return &Manager{Dir: dir}
}

// PathFor returns the lock file used for pair.
func (m *Manager) PathFor(pair string) string {
	sum := sha256.Sum256([]byte(pair))
	return filepath.Join(m.Dir, fmt.Sprintf("georep-setup_%s.lock", hex.EncodeToString(sum[:8])))
}

// Acquire takes the lock for pair without blocking. When another process
// holds it, the returned error wraps ErrLocked and names the holder.
func (m *Manager) Acquire(pair string, info *LockInfo) (Releaser, error) {
	path := m.PathFor(pair)
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Couldn't create lock file %s", path),
			"Check lock_dir exists and is writable")
	}
	if !ok {
		return nil, errors.WrapWithCode(ErrLocked, errors.ErrLock,
			fmt.Sprintf("Another setup for %s is already running", pair),
			fmt.Sprintf("Lock held by: %s. Wait for it to finish.", readHolder(path)))
	}

	if info != nil {
		if data, err := info.Marshal(); err == nil {
			// The holder description is informational; a failed write keeps the lock.
			_ = os.WriteFile(path, data, 0600)
		}
	}

	return &Lock{Path: path, Info: info, fl: fl}, nil
}

// Release unlocks and removes the lock file.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			fmt.Sprintf("Couldn't release lock %s", l.Path),
			"Remove the file by hand if no setup is running")
	}
	_ = os.Remove(l.Path)
	return nil
}

func readHolder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return "unknown"
	}
	info, err := ParseLockInfo(data)
	if err != nil {
		return "unknown"
	}
	return fmt.Sprintf("%s, started %s ago", info, info.Age().Round(time.Second))
}
