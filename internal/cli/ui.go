package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// PrintError writes a styled error line to stderr. Styling is skipped when
// stderr is not a terminal.
func PrintError(err error) {
	if err == nil {
		return
	}
	prefix := "error:"
	if stderrIsTTY() {
		prefix = errorStyle.Render(prefix)
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", prefix, sanitizeDiagnostic(err.Error()))
}

// PrintWarning writes a styled warning line to stderr.
func PrintWarning(msg string) {
	prefix := "warning:"
	if stderrIsTTY() {
		prefix = warningStyle.Render(prefix)
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", prefix, sanitizeDiagnostic(msg))
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func stderrIsTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// sanitizeDiagnostic replaces control characters before echoing values that
// may have come from untrusted input, preventing ANSI injection into the
// terminal.
func sanitizeDiagnostic(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7F {
			return '?'
		}
		return r
	}, s)
}
