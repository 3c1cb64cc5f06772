package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// LockInfo describes the run holding a lock. It is written into the lock
// file so a second invocation can say who it is waiting on.
type LockInfo struct {
	User     string    `json:"user"`
	Hostname string    `json:"hostname"`
	Started  time.Time `json:"started"`
	PID      int       `json:"pid"`
	RunID    string    `json:"run_id,omitempty"`
	Pair     string    `json:"pair,omitempty"`
}

// NewLockInfo creates a LockInfo for the current process.
func NewLockInfo(runID, pair string) *LockInfo {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}

	return &LockInfo{
		User:     user,
		Hostname: hostname,
		Started:  time.Now(),
		PID:      os.Getpid(),
		RunID:    runID,
		Pair:     pair,
	}
}

// Age returns how long ago the lock was acquired.
func (i *LockInfo) Age() time.Duration {
	return time.Since(i.Started)
}

// Marshal serializes the LockInfo to JSON.
func (i *LockInfo) Marshal() ([]byte, error) {
	return json.Marshal(i)
}

// ParseLockInfo deserializes JSON data into a LockInfo.
func ParseLockInfo(data []byte) (*LockInfo, error) {
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// String returns a human-readable description of who holds the lock.
func (i *LockInfo) String() string {
	return fmt.Sprintf("%s@%s (pid %d)", i.User, i.Hostname, i.PID)
}
