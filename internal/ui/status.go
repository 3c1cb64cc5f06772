package ui

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/georep/internal/errors"
)

// ColorMode controls marker coloring.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode accepts auto, always or never. Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways:
		return ColorAlways, nil
	case ColorNever:
		return ColorNever, nil
	}
	return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
}

// Printer writes status lines.
type Printer struct {
	out    io.Writer
	errOut io.Writer

	okStyle     lipgloss.Style
	warnStyle   lipgloss.Style
	failStyle   lipgloss.Style
	dryStyle    lipgloss.Style
	detailStyle lipgloss.Style
}

// NewPrinter creates a Printer writing successes and warnings to out and
// failures to errOut. In auto mode each writer's own terminal capabilities
// (and NO_COLOR) decide.
func NewPrinter(out, errOut io.Writer, mode ColorMode) *Printer {
	outR := newRenderer(out, mode)
	errR := newRenderer(errOut, mode)

	return &Printer{
		out:         out,
		errOut:      errOut,
		okStyle:     outR.NewStyle().Foreground(ColorSuccess),
		warnStyle:   outR.NewStyle().Foreground(ColorWarning),
		dryStyle:    outR.NewStyle().Foreground(ColorInfo),
		failStyle:   errR.NewStyle().Foreground(ColorError),
		detailStyle: errR.NewStyle().Foreground(ColorMuted),
	}
}

func newRenderer(w io.Writer, mode ColorMode) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	}
	return r
}

// OK prints a success line.
func (p *Printer) OK(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", p.okStyle.Render(MarkerOK), fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", p.warnStyle.Render(MarkerWarn), fmt.Sprintf(format, args...))
}

// DryRun prints a command that would have been run.
func (p *Printer) DryRun(format string, args ...interface{}) {
	fmt.Fprintf(p.out, "%s %s\n", p.dryStyle.Render(MarkerDry), fmt.Sprintf(format, args...))
}

// Fail prints a failure line followed by detail, if any.
func (p *Printer) Fail(msg, detail string) {
	fmt.Fprintf(p.errOut, "%s %s\n", p.failStyle.Render(MarkerFail), msg)
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return
	}
	// Styled line by line; a multi-line Render would pad every line to the widest.
	for _, line := range strings.Split(detail, "\n") {
		fmt.Fprintln(p.errOut, p.detailStyle.Render(line))
	}
}

// Error prints err as a failure line. Structured errors contribute their
// cause and suggestion as detail.
func (p *Printer) Error(err error) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		p.Fail(e.Message, e.Detail())
		return
	}
	p.Fail(err.Error(), "")
}
