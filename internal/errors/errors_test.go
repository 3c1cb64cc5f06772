package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrPrivilege,
		ErrParse,
		ErrConfig,
		ErrTransport,
		ErrVersion,
		ErrCapacity,
		ErrBootstrap,
		ErrSession,
		ErrLock,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "privilege error",
			code:       ErrPrivilege,
			message:    "Only root can run this tool!",
			suggestion: "Re-run with sudo",
		},
		{
			name:       "version error",
			code:       ErrVersion,
			message:    "Primary Volume(10.1) and Secondary Volume(10.4) versions not Compatible",
			suggestion: "",
		},
		{
			name:       "bootstrap error",
			code:       ErrBootstrap,
			message:    "Common secret pub file generation failed",
			suggestion: "Check glusterd is running on every primary node",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	err := WrapWithCode(
		errors.New("dial tcp 10.0.0.2:22: connect: connection refused"),
		ErrTransport,
		"secHost is Not Reachable(Port 22)",
		"Check sshd is running on the secondary node",
	)

	output := err.Error()
	lines := strings.Split(output, "\n")

	assert.True(t, strings.HasPrefix(lines[0], "✗"))
	assert.Contains(t, lines[0], "secHost is Not Reachable(Port 22)")
	assert.Contains(t, output, "connection refused")
	assert.Contains(t, output, "Check sshd is running")
}

func TestErrorFormatting_NoSuggestion(t *testing.T) {
	err := New(ErrSession, "Failed to Establish Geo-replication Session", "")

	assert.Equal(t, "✗ Failed to Establish Geo-replication Session\n", err.Error())
}

func TestDetail(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "cause and suggestion",
			err:  WrapWithCode(errors.New("exit status 1\n"), ErrBootstrap, "failed", "retry"),
			want: "exit status 1\nretry",
		},
		{
			name: "cause only",
			err:  Wrap(errors.New("boom"), "failed"),
			want: "boom",
		},
		{
			name: "nothing",
			err:  New(ErrCapacity, "failed", ""),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Detail())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying network error")
	wrapped := Wrap(cause, "Unable to establish SSH connection")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrTransport, wrapped.Code, "Wrap should default to ErrTransport code")
	assert.Equal(t, cause, wrapped.Cause)
}

func TestErrorsIsAndAs(t *testing.T) {
	cause := errors.New("specific error")
	wrapped := WrapWithCode(cause, ErrLock, "Lock error", "")

	assert.True(t, errors.Is(wrapped, cause))

	var geoErr *Error
	require.True(t, errors.As(wrapped, &geoErr))
	assert.Equal(t, ErrLock, geoErr.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrCapacity, "Capacity error", "")

	assert.True(t, IsCode(err, ErrCapacity))
	assert.False(t, IsCode(err, ErrVersion))
	assert.False(t, IsCode(errors.New("standard error"), ErrCapacity))
	assert.False(t, IsCode(nil, ErrCapacity))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(New(ErrVersion, "mismatch", "")))
	assert.Equal(t, 1, ExitCode(errors.New("interrupted")))
}
