package exec

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rileyhilliard/georep/internal/errors"
)

// commandNotFoundPatterns detect a missing binary in the stderr of a remote
// shell. They only apply with exit code 127.
var commandNotFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)sudo: (\S+): command not found`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
	regexp.MustCompile(`(?i)(\S+): not found`),
}

// sudoPasswordPatterns match sudo refusing to run without a TTY or password.
var sudoPasswordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)sudo: a terminal is required`),
	regexp.MustCompile(`(?i)sudo: a password is required`),
	regexp.MustCompile(`(?i)sudo: no tty present`),
	regexp.MustCompile(`(?i)is not in the sudoers file`),
}

// IsCommandNotFound checks if the error output indicates a missing command.
// Returns the command name (if extractable) and whether it's a command-not-found error.
func IsCommandNotFound(stderr string, exitCode int) (string, bool) {
	// Exit code 127 is the standard for command not found
	if exitCode != 127 {
		return "", false
	}

	for _, pattern := range commandNotFoundPatterns {
		if matches := pattern.FindStringSubmatch(stderr); len(matches) > 1 {
			return matches[1], true
		}
	}

	return "", true
}

// IsSudoDenied reports whether sudo refused to run the command.
func IsSudoDenied(stderr string) bool {
	for _, pattern := range sudoPasswordPatterns {
		if pattern.MatchString(stderr) {
			return true
		}
	}
	return false
}

// Hint returns a one-line diagnosis for a failed command whose cause is
// recognizable from its output, or "" when nothing specific is known.
func Hint(res Result) string {
	stderr := string(res.Stderr)

	if name, notFound := IsCommandNotFound(stderr, res.ExitCode); notFound {
		if name == "" {
			name = "command"
			for _, p := range strings.Fields(res.Command) {
				if p != "sudo" {
					name = p
					break
				}
			}
		}
		return fmt.Sprintf("'%s' not found in PATH on %s. Install the glusterfs-server package there, or check the PATH of non-interactive SSH sessions.", name, res.Host)
	}

	if IsSudoDenied(stderr) {
		return fmt.Sprintf("sudo refused to run '%s' on %s. Grant the secondary user passwordless sudo (NOPASSWD in sudoers).", res.Command, res.Host)
	}

	return ""
}

// CommandError builds the structured error for a command that ran but
// exited non-zero. The command's own output becomes the cause.
func CommandError(code, message string, res Result) error {
	cause := fmt.Errorf("%s exited with status %d", res.Command, res.ExitCode)
	if detail := res.Detail(); detail != "" {
		cause = stderrors.New(detail)
	}
	return errors.WrapWithCode(cause, code, message, Hint(res))
}
