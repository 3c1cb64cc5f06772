// Package endpoint parses and renders the two sides of a geo-replication
// relationship.
package endpoint

import (
	"fmt"
	"strings"
)

const (
	// DefaultUser is the privileged account used when no user is given.
	DefaultUser = "root"

	// PrimaryHost is where the primary volume is mounted from.
	PrimaryHost = "localhost"

	volumeSep = "::"
)

// Endpoint identifies one side of a geo-replication session.
type Endpoint struct {
	User   string
	Host   string
	Volume string
}

// ParseError is returned for a secondary string that is not [user@]host::volume.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid secondary %q: %s (expected [user@]host::volume)", e.Input, e.Reason)
}

// Primary returns the endpoint for a volume on the local cluster.
func Primary(volume string) Endpoint {
	return Endpoint{User: DefaultUser, Host: PrimaryHost, Volume: volume}
}

// ParseSecondary parses "[user@]host::volume". A missing user defaults to root.
func ParseSecondary(s string) (Endpoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Endpoint{}, &ParseError{Input: s, Reason: "empty value"}
	}

	hostPart, volume, found := strings.Cut(s, volumeSep)
	if !found {
		return Endpoint{}, &ParseError{Input: s, Reason: "missing '::' separator"}
	}
	if strings.Contains(volume, volumeSep) {
		return Endpoint{}, &ParseError{Input: s, Reason: "more than one '::' separator"}
	}
	if volume == "" {
		return Endpoint{}, &ParseError{Input: s, Reason: "empty volume name"}
	}
	if strings.ContainsAny(volume, " /@") {
		return Endpoint{}, &ParseError{Input: s, Reason: fmt.Sprintf("volume name %q has invalid characters", volume)}
	}

	ep := Endpoint{User: DefaultUser, Volume: volume}

	if user, host, hasUser := strings.Cut(hostPart, "@"); hasUser {
		if user == "" {
			return Endpoint{}, &ParseError{Input: s, Reason: "empty user before '@'"}
		}
		if strings.Contains(host, "@") {
			return Endpoint{}, &ParseError{Input: s, Reason: "more than one '@'"}
		}
		ep.User = user
		hostPart = host
	}

	if hostPart == "" {
		return Endpoint{}, &ParseError{Input: s, Reason: "empty host"}
	}
	ep.Host = hostPart

	return ep, nil
}

// IsDefaultUser reports whether the endpoint uses the privileged account.
func (e Endpoint) IsDefaultUser() bool {
	return e.User == "" || e.User == DefaultUser
}

// Address returns "user@host", or just host for the default user.
func (e Endpoint) Address() string {
	if e.IsDefaultUser() {
		return e.Host
	}
	return e.User + "@" + e.Host
}

// String renders the endpoint in the form the session-create command expects.
func (e Endpoint) String() string {
	return e.Address() + volumeSep + e.Volume
}
