// Package host checks that the secondary entry node accepts connections on
// its SSH port before any credentials are sent to it.
package host

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/georep/internal/errors"
)

// DefaultTimeout bounds a probe when the caller passes zero.
const DefaultTimeout = 10 * time.Second

// ProbeError represents a failed probe with categorized failure reason.
type ProbeError struct {
	Address string
	Reason  ProbeFailReason
	Cause   error
}

// ProbeFailReason categorizes why a probe failed.
type ProbeFailReason int

const (
	ProbeFailUnknown ProbeFailReason = iota
	ProbeFailTimeout
	ProbeFailRefused
	ProbeFailUnreachable
	ProbeFailDNS
)

// String returns a human-readable description of the failure reason.
func (r ProbeFailReason) String() string {
	switch r {
	case ProbeFailTimeout:
		return "connection timed out"
	case ProbeFailRefused:
		return "connection refused"
	case ProbeFailUnreachable:
		return "host unreachable"
	case ProbeFailDNS:
		return "name does not resolve"
	default:
		return "unknown error"
	}
}

func (e *ProbeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("probe %s failed: %s (%v)", e.Address, e.Reason, e.Cause)
	}
	return fmt.Sprintf("probe %s failed: %s", e.Address, e.Reason)
}

func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// ProbeTCP opens and immediately closes a TCP connection to host:port.
// Returns the connect latency on success, or a TRANSPORT error wrapping a
// *ProbeError on failure.
func ProbeTCP(ctx context.Context, host string, port int, timeout time.Duration) (time.Duration, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	address := net.JoinHostPort(host, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: timeout}
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		probeErr := categorizeProbeError(address, err)
		return 0, errors.WrapWithCode(probeErr, errors.ErrTransport,
			fmt.Sprintf("%s is Not Reachable(Port %d)", host, port),
			suggestionFor(probeErr.Reason, host, port))
	}
	defer conn.Close()

	return time.Since(start), nil
}

func suggestionFor(reason ProbeFailReason, host string, port int) string {
	switch reason {
	case ProbeFailRefused:
		return fmt.Sprintf("Nothing is listening on port %d. Start sshd on %s.", port, host)
	case ProbeFailTimeout:
		return fmt.Sprintf("A firewall may be dropping traffic to port %d, or %s is down.", port, host)
	case ProbeFailDNS:
		return fmt.Sprintf("Check the spelling of %s, or add it to /etc/hosts.", host)
	case ProbeFailUnreachable:
		return "Check routing between this node and the secondary cluster."
	default:
		return "Check network connectivity to the secondary node."
	}
}

// categorizeProbeError converts a generic error into a ProbeError with
// a categorized failure reason.
func categorizeProbeError(address string, err error) *ProbeError {
	if err == nil {
		return nil
	}

	probeErr := &ProbeError{
		Address: address,
		Reason:  ProbeFailUnknown,
		Cause:   err,
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "timeout"):
		probeErr.Reason = ProbeFailTimeout
	case strings.Contains(errStr, "connection refused"):
		probeErr.Reason = ProbeFailRefused
	case strings.Contains(errStr, "no such host"),
		strings.Contains(errStr, "server misbehaving"):
		probeErr.Reason = ProbeFailDNS
	case strings.Contains(errStr, "no route to host"),
		strings.Contains(errStr, "network is unreachable"),
		strings.Contains(errStr, "host is down"):
		probeErr.Reason = ProbeFailUnreachable
	}

	return probeErr
}
