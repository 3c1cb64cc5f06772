// Package util provides common utility functions used across the codebase.
package util

import "strings"

// ShellQuote wraps a string in single quotes, escaping any existing single quotes.
// This is safe for use in shell commands where the string should be treated literally.
func ShellQuote(s string) string {
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// ShellJoin renders args as a single remote command line. Arguments made
// only of safe characters are left bare so the line reads the way an
// operator would type it; anything else is single-quoted.
func ShellJoin(args ...string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if isShellSafe(a) {
			parts[i] = a
		} else {
			parts[i] = ShellQuote(a)
		}
	}
	return strings.Join(parts, " ")
}

func isShellSafe(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_./:=@,+%", r):
		default:
			return false
		}
	}
	return true
}
