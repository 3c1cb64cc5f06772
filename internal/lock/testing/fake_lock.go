// Package testing provides test doubles for the lock package.
package testing

import (
	"sync"

	"github.com/rileyhilliard/georep/internal/errors"
	"github.com/rileyhilliard/georep/internal/lock"
)

// FakeLock represents a fake acquired lock.
type FakeLock struct {
	Pair     string
	Released bool
	mu       sync.Mutex
}

// Release marks the fake lock as released.
func (l *FakeLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Released = true
	return nil
}

// IsReleased reports whether Release was called.
func (l *FakeLock) IsReleased() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Released
}

// FakeLockManager satisfies lock.Locker without touching the filesystem.
type FakeLockManager struct {
	mu sync.Mutex

	// HeldBy, when set, makes every Acquire fail as if that holder owned the lock.
	HeldBy string

	AcquireCalls []string
	Locks        []*FakeLock
}

// NewFakeLockManager creates a new fake lock manager that succeeds by default.
func NewFakeLockManager() *FakeLockManager {
	return &FakeLockManager{}
}

// Acquire records the call and returns a FakeLock unless HeldBy is set.
func (m *FakeLockManager) Acquire(pair string, _ *lock.LockInfo) (lock.Releaser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AcquireCalls = append(m.AcquireCalls, pair)
	if m.HeldBy != "" {
		return nil, errors.WrapWithCode(lock.ErrLocked, errors.ErrLock,
			"Another setup for "+pair+" is already running",
			"Lock held by: "+m.HeldBy+". Wait for it to finish.")
	}

	l := &FakeLock{Pair: pair}
	m.Locks = append(m.Locks, l)
	return l, nil
}

// AllReleased reports whether every handed-out lock was released.
func (m *FakeLockManager) AllReleased() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.Locks {
		if !l.IsReleased() {
			return false
		}
	}
	return true
}
