package testing

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"
	"sync"
)

// CommandResponse defines a canned response for a specific command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

// Upload records one file transfer made through the mock.
type Upload struct {
	LocalPath  string
	RemotePath string
	Content    []byte
}

type commandRule struct {
	pattern string
	re      *regexp.Regexp
	resp    CommandResponse
}

// MockClient simulates the SSH channel to a secondary entry node. It records
// every command and upload in order, answers from canned responses, and
// falls back to a tiny shell emulation (cp, cat, test -f) against MockFS.
type MockClient struct {
	mu          sync.Mutex
	host        string
	address     string
	user        string
	fs          *MockFS
	closed      bool
	rules       []commandRule
	commands    []string
	uploads     []Upload
	uploadError error
}

// NewMockClient creates a new mock SSH client with an empty filesystem.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:    host,
		address: host + ":22",
		user:    "root",
		fs:      NewMockFS(),
	}
}

// SetUser sets the user reported by GetUser.
func (m *MockClient) SetUser(user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
}

// Exec records cmd and returns the first matching canned response, or the
// result of the shell emulation.
func (m *MockClient) Exec(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, -1, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, errors.New("connection closed")
	}

	m.commands = append(m.commands, cmd)

	// Exact matches win over patterns; patterns are tried in registration order.
	for _, r := range m.rules {
		if r.pattern == cmd {
			return r.resp.Stdout, r.resp.Stderr, r.resp.ExitCode, r.resp.Error
		}
	}
	for _, r := range m.rules {
		if r.re != nil && r.re.MatchString(cmd) {
			return r.resp.Stdout, r.resp.Stderr, r.resp.ExitCode, r.resp.Error
		}
	}

	return m.parseAndExecute(cmd)
}

// Upload records the transfer and stores the local file's content at remotePath.
func (m *MockClient) Upload(ctx context.Context, localPath, remotePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.New("connection closed")
	}
	if m.uploadError != nil {
		m.uploads = append(m.uploads, Upload{LocalPath: localPath, RemotePath: remotePath})
		return m.uploadError
	}

	content, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	m.uploads = append(m.uploads, Upload{LocalPath: localPath, RemotePath: remotePath, Content: content})
	return m.fs.WriteFile(remotePath, content)
}

// SetUploadError makes every subsequent Upload fail with err.
func (m *MockClient) SetUploadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadError = err
}

// Close marks the connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetHost returns the host name.
func (m *MockClient) GetHost() string {
	return m.host
}

// GetAddress returns the host:port address.
func (m *MockClient) GetAddress() string {
	return m.address
}

// GetUser returns the authenticated user.
func (m *MockClient) GetUser() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// SetCommandResponse registers a canned response for a command pattern.
// The pattern can be an exact string or a regex pattern.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rule := commandRule{pattern: pattern, resp: resp}
	if re, err := regexp.Compile(pattern); err == nil {
		rule.re = re
	}
	m.rules = append(m.rules, rule)
}

// Commands returns every command executed so far, in order.
func (m *MockClient) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

// Uploads returns every upload attempted so far, in order.
func (m *MockClient) Uploads() []Upload {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Upload(nil), m.uploads...)
}

// GetFS returns the mock filesystem for direct manipulation in tests.
func (m *MockClient) GetFS() *MockFS {
	return m.fs
}

// parseAndExecute handles the few shell commands the setup pipeline issues
// outside the gluster CLI.
func (m *MockClient) parseAndExecute(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	cmd = strings.TrimSpace(strings.TrimPrefix(cmd, "sudo "))
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil, nil, 0, nil
	}

	switch fields[0] {
	case "cp":
		if len(fields) != 3 {
			return nil, []byte("cp: missing destination file operand"), 1, nil
		}
		src, dst := unquote(fields[1]), unquote(fields[2])
		if err := m.fs.Copy(src, dst); err != nil {
			return nil, []byte("cp: cannot stat '" + src + "': No such file or directory"), 1, nil
		}
		return nil, nil, 0, nil
	case "cat":
		if len(fields) != 2 {
			return nil, []byte("cat: missing file operand"), 1, nil
		}
		content, err := m.fs.ReadFile(unquote(fields[1]))
		if err != nil {
			return nil, []byte("cat: " + fields[1] + ": No such file or directory"), 1, nil
		}
		return content, nil, 0, nil
	case "test":
		if len(fields) == 3 && fields[1] == "-f" && m.fs.IsFile(unquote(fields[2])) {
			return nil, nil, 0, nil
		}
		return nil, nil, 1, nil
	}

	// Unknown command - return success by default
	return nil, nil, 0, nil
}

func unquote(arg string) string {
	if len(arg) >= 2 && (arg[0] == '\'' || arg[0] == '"') && arg[len(arg)-1] == arg[0] {
		return arg[1 : len(arg)-1]
	}
	return arg
}
