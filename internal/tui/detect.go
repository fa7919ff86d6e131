// Package tui holds the small amount of terminal presentation roomstat does:
// interactive-mode detection, the password prompt and the styled run summary.
package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for roomstat.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// DetectMode determines whether roomstat talks to a human.
//
// Returns ModeNonInteractive if:
//   - ROOMSTAT_NON_INTERACTIVE=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set
//   - stderr is not a terminal
//
// Stdout is deliberately not checked: it may carry exported documents
// while the summary goes to the terminal on stderr.
func DetectMode() Mode {
	if os.Getenv("ROOMSTAT_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	if os.Getenv("CI") != "" {
		return ModeNonInteractive
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModeNonInteractive
	}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
