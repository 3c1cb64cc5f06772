package lock

import (
	stderrors "errors"
	"os"
	"testing"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_PathFor(t *testing.T) {
	m := NewManager("/tmp/locks")

	p1 := m.PathFor("primary1 geo@secHost::secondary1")
	p2 := m.PathFor("primary1 geo@secHost::secondary1")
	p3 := m.PathFor("primary2 geo@secHost::secondary1")

	assert.Equal(t, p1, p2)
	assert.NotEqual(t, p1, p3)
	assert.Regexp(t, `^/tmp/locks/georep-setup_[0-9a-f]{16}\.lock$`, p1)
}

func TestNewManager_DefaultDir(t *testing.T) {
	assert.Equal(t, DefaultDir, NewManager("").Dir)
}

func TestManager_AcquireRelease(t *testing.T) {
	m := NewManager(t.TempDir())
	info := NewLockInfo("run-1", "p s::v")

	l, err := m.Acquire("p s::v", info)
	require.NoError(t, err)

	held := l.(*Lock)
	data, err := os.ReadFile(held.Path)
	require.NoError(t, err)
	parsed, err := ParseLockInfo(data)
	require.NoError(t, err)
	assert.Equal(t, "run-1", parsed.RunID)
	assert.Equal(t, os.Getpid(), parsed.PID)

	require.NoError(t, l.Release())
	_, err = os.Stat(held.Path)
	assert.True(t, os.IsNotExist(err), "lock file should be removed on release")

	// Free again after release.
	l2, err := m.Acquire("p s::v", nil)
	require.NoError(t, err)
	require.NoError(t, l2.Release())
}

func TestManager_AcquireHeld(t *testing.T) {
	m := NewManager(t.TempDir())

	first, err := m.Acquire("p s::v", NewLockInfo("run-1", "p s::v"))
	require.NoError(t, err)
	defer func() { _ = first.Release() }()

	_, err = m.Acquire("p s::v", NewLockInfo("run-2", "p s::v"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrLocked))
	assert.True(t, errors.IsCode(err, errors.ErrLock))

	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Contains(t, e.Suggestion, "pid")
}

func TestManager_AcquireBadDir(t *testing.T) {
	m := NewManager("/nonexistent/georep/locks")

	_, err := m.Acquire("p s::v", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLock))
	assert.False(t, stderrors.Is(err, ErrLocked))
}

func TestLockInfo_String(t *testing.T) {
	info := &LockInfo{User: "root", Hostname: "node1", PID: 42}
	assert.Equal(t, "root@node1 (pid 42)", info.String())
}

func TestParseLockInfo_Invalid(t *testing.T) {
	_, err := ParseLockInfo([]byte("not json"))
	assert.Error(t, err)
}
