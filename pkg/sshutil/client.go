package sshutil

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kevinburke/ssh_config"
	"github.com/rileyhilliard/georep/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultPort is the standard secure-shell port probed and dialled when
// neither the caller nor ~/.ssh/config names another one.
const DefaultPort = 22

// DefaultConnectTimeout bounds the TCP connect and SSH handshake.
const DefaultConnectTimeout = 10 * time.Second

// HostKeyPolicy controls host key verification.
type HostKeyPolicy string

const (
	// HostKeyStrict only accepts hosts already present in known_hosts.
	HostKeyStrict HostKeyPolicy = "strict"
	// HostKeyAcceptNew records unknown hosts and rejects changed keys.
	HostKeyAcceptNew HostKeyPolicy = "accept-new"
	// HostKeyOff skips verification entirely.
	HostKeyOff HostKeyPolicy = "off"
)

// ParseHostKeyPolicy validates a policy name from config or flags.
func ParseHostKeyPolicy(s string) (HostKeyPolicy, error) {
	switch p := HostKeyPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case HostKeyStrict, HostKeyAcceptNew, HostKeyOff:
		return p, nil
	case "":
		return HostKeyAcceptNew, nil
	default:
		return "", fmt.Errorf("unknown host key policy %q (want strict, accept-new or off)", s)
	}
}

// DialOptions describes a password-authenticated connection.
type DialOptions struct {
	Host          string
	Port          int // 0 means ssh config or DefaultPort
	User          string
	Password      string
	Timeout       time.Duration
	HostKeyPolicy HostKeyPolicy
	// KnownHostsPath overrides ~/.ssh/known_hosts.
	KnownHostsPath string
}

// Client wraps an SSH connection with additional metadata.
type Client struct {
	*ssh.Client
	Host    string // The host as given by the caller
	Address string // The resolved address (host:port)
	User    string
}

// matchWarningOnce ensures the SSH config Match directive warning is only shown once per process.
var matchWarningOnce sync.Once

// WarningHandler is a function that handles warning messages.
// If nil, warnings are printed to stderr via log.Printf.
var WarningHandler func(message string)

func emitWarning(message string) {
	if WarningHandler != nil {
		WarningHandler(message)
	} else {
		log.Printf("Warning: %s", message)
	}
}

// DialPassword establishes an SSH connection authenticated with a password.
// Both "password" and "keyboard-interactive" methods are offered since many
// sshd configurations only enable the latter. HostName and Port are resolved
// from ~/.ssh/config when the host is an alias there.
func DialPassword(ctx context.Context, opts DialOptions) (*Client, error) {
	if opts.Host == "" || opts.User == "" {
		return nil, errors.New(errors.ErrTransport,
			"SSH host and user are required",
			"Pass the secondary as [user@]host::volume")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultConnectTimeout
	}

	settings := resolveSSHSettings(opts.Host, opts.Port)

	hostKeyCallback, err := hostKeyCallbackFor(opts.HostKeyPolicy, opts.KnownHostsPath)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Couldn't load known_hosts",
			"Check permissions on ~/.ssh/known_hosts, or set host_key_checking: off")
	}

	config := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            passwordAuth(opts.Password),
		HostKeyCallback: hostKeyCallback,
		Timeout:         opts.Timeout,
	}

	address := settings.address()
	dialer := net.Dialer{Timeout: opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Can't reach '%s' at %s", opts.Host, address),
			suggestionForDialError(err))
	}

	// The handshake has no context of its own; bound it with a deadline.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(opts.Timeout))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()

		var hostKeyErr *HostKeyMismatchError
		if stderrors.As(err, &hostKeyErr) {
			return nil, errors.New(errors.ErrTransport,
				hostKeyErr.Error(),
				hostKeyErr.Suggestion())
		}

		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Unable to establish SSH connection to %s@%s", opts.User, opts.Host),
			suggestionForHandshakeError(err))
	}
	_ = conn.SetDeadline(time.Time{})

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    opts.Host,
		Address: address,
		User:    opts.User,
	}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the host as given by the caller.
func (c *Client) GetHost() string {
	return c.Host
}

// GetAddress returns the resolved host:port address.
func (c *Client) GetAddress() string {
	return c.Address
}

// GetUser returns the authenticated user.
func (c *Client) GetUser() string {
	return c.User
}

func passwordAuth(password string) []ssh.AuthMethod {
	answer := func(user, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = password
		}
		return answers, nil
	}
	return []ssh.AuthMethod{
		ssh.Password(password),
		ssh.KeyboardInteractive(answer),
	}
}

// sshSettings holds resolved SSH connection parameters.
type sshSettings struct {
	hostname string
	port     string
}

// address returns the host:port string for dialing.
func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSSHSettings applies HostName and Port from ~/.ssh/config. An
// explicit port always wins over the config file.
func resolveSSHSettings(host string, port int) *sshSettings {
	settings := &sshSettings{
		hostname: host,
		port:     strconv.Itoa(DefaultPort),
	}

	sshConfigPath := filepath.Join(homeDir(), ".ssh", "config")

	// kevinburke/ssh_config doesn't support Match, so only the content
	// before the first Match block is parsed.
	content, matchLine, err := preprocessSSHConfig(sshConfigPath)
	if err == nil {
		if cfg, decodeErr := ssh_config.Decode(bytes.NewReader(content)); decodeErr == nil {
			hostFound := false
			if hostname, _ := cfg.Get(host, "HostName"); hostname != "" {
				settings.hostname = hostname
				hostFound = true
			}
			if p, _ := cfg.Get(host, "Port"); p != "" {
				settings.port = p
				hostFound = true
			}
			if matchLine > 0 && !hostFound {
				matchWarningOnce.Do(func() {
					emitWarning(fmt.Sprintf(
						"Host '%s' not found in SSH config (config has a Match block at line %d that may hide later entries)",
						host, matchLine))
				})
			}
		}
	}

	if port > 0 {
		settings.port = strconv.Itoa(port)
	}

	return settings
}

// Address returns the host:port that DialPassword would connect to.
func Address(host string, port int) string {
	return resolveSSHSettings(host, port).address()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") {
		return "Is SSH running on the secondary node?"
	}
	if strings.Contains(errStr, "no route to host") || strings.Contains(errStr, "network is unreachable") {
		return "Can't route to the host. Check your network connection."
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "i/o timeout") {
		return "Connection timed out. Host might be offline or blocked by a firewall."
	}
	return "Make sure the host is reachable: ping <host>"
}

func suggestionForHandshakeError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "unable to authenticate") || strings.Contains(errStr, "no supported methods") {
		return "Check the password, and that sshd allows password authentication for this user."
	}
	if strings.Contains(errStr, "host key") || strings.Contains(errStr, "knownhosts") {
		return "Host key issue. Try connecting manually first: ssh <user>@<host>"
	}
	return "Something went wrong during SSH setup. Try: ssh <user>@<host>"
}

// HostKeyMismatchError provides helpful context when known_hosts verification fails.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
	Want         []knownhosts.KnownKey
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion returns actionable steps to fix the host key mismatch.
func (e *HostKeyMismatchError) Suggestion() string {
	host := e.Hostname
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	var wantTypes []string
	for _, k := range e.Want {
		wantTypes = append(wantTypes, k.Key.Type())
	}
	wantStr := "unknown"
	if len(wantTypes) > 0 {
		wantStr = strings.Join(wantTypes, ", ")
	}

	return fmt.Sprintf(
		"The server's host key doesn't match what's in known_hosts.\n"+
			"  Known types: %s\n"+
			"  Server sent: %s\n\n"+
			"  If the secondary node was reinstalled, remove the old entry:\n"+
			"    ssh-keygen -f %s -R %s",
		wantStr, e.ReceivedType, e.KnownHosts, host)
}

// preprocessSSHConfig reads the SSH config and returns content up to the first Match directive.
// Also returns the line number where Match was found (0 if not found).
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	matchLine := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "match ") {
			matchLine = i + 1
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), matchLine, nil
}

func hostKeyCallbackFor(policy HostKeyPolicy, knownHostsPath string) (ssh.HostKeyCallback, error) {
	if policy == HostKeyOff {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // operator explicitly disabled host key checking
	}
	if knownHostsPath == "" {
		knownHostsPath = filepath.Join(homeDir(), ".ssh", "known_hosts")
	}
	return createHostKeyCallback(knownHostsPath, policy == HostKeyAcceptNew)
}

// createHostKeyCallback wraps the knownhosts callback to provide better error
// messages. With acceptNew, keys for hosts absent from the file are appended.
func createHostKeyCallback(knownHostsPath string, acceptNew bool) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		dir := filepath.Dir(knownHostsPath)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create .ssh directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, fmt.Errorf("failed to create known_hosts: %w", err)
		}
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		if err == nil {
			return nil
		}

		var keyErr *knownhosts.KeyError
		if !stderrors.As(err, &keyErr) {
			return err
		}
		if len(keyErr.Want) > 0 {
			return &HostKeyMismatchError{
				Hostname:     hostname,
				ReceivedType: key.Type(),
				KnownHosts:   knownHostsPath,
				Want:         keyErr.Want,
			}
		}
		if !acceptNew {
			return err
		}
		return appendKnownHost(knownHostsPath, hostname, key)
	}, nil
}

func appendKnownHost(path, hostname string, key ssh.PublicKey) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to record host key: %w", err)
	}
	defer f.Close()

	line := knownhosts.Line([]string{knownhosts.Normalize(hostname)}, key)
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("failed to record host key: %w", err)
	}
	return nil
}
