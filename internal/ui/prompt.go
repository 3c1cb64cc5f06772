package ui

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrPromptAborted is returned when the operator cancels the password prompt.
var ErrPromptAborted = stderrors.New("password prompt aborted")

// PasswordPrompt describes the question asked before connecting.
type PasswordPrompt struct {
	// Intro explains what the password is for.
	Intro string
	// Label is the short "user@host's password" line.
	Label string
}

// NewPasswordPrompt builds the prompt shown before the secondary admin
// password is collected.
func NewPasswordPrompt(primaryVolume, secondary, adminUser, host string) PasswordPrompt {
	return PasswordPrompt{
		Intro: fmt.Sprintf("Geo-replication session will be established between %s and %s\n"+
			"%s@%s password is required to complete the setup. NOTE: Password will not be stored.",
			primaryVolume, secondary, adminUser, host),
		Label: fmt.Sprintf("%s@%s's password", adminUser, host),
	}
}

// PromptPassword reads the password from the controlling terminal.
// On a capable terminal it uses a masked Huh input; on a dumb terminal it
// reads without echo; when stdin is not a terminal it reads one line,
// which keeps scripted runs possible.
func PromptPassword(p PasswordPrompt, out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ReadPasswordLine(os.Stdin, out, p)
	}

	if os.Getenv("TERM") == "dumb" {
		fmt.Fprintf(out, "%s\n\n%s: ", p.Intro, p.Label)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	var password string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(p.Label).
				Description(p.Intro).
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	)
	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return "", ErrPromptAborted
		}
		return "", fmt.Errorf("password prompt: %w", err)
	}
	return password, nil
}

// ReadPasswordLine prints the prompt to out and reads a single line from r.
// The trailing newline is dropped; nothing else is trimmed.
func ReadPasswordLine(r io.Reader, out io.Writer, p PasswordPrompt) (string, error) {
	fmt.Fprintf(out, "%s\n\n%s: ", p.Intro, p.Label)

	line, err := bufio.NewReader(r).ReadString('\n')
	fmt.Fprintln(out)
	if err != nil && !(stderrors.Is(err, io.EOF) && line != "") {
		if stderrors.Is(err, io.EOF) {
			return "", ErrPromptAborted
		}
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}
