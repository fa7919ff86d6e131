package tui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrNoTerminal is returned when a password prompt is requested without a
// terminal on stdin.
var ErrNoTerminal = errors.New("password prompt requires a terminal on stdin")

// ReadPassword prompts on out and reads a line from the terminal on stdin
// without echo.
func ReadPassword(out io.Writer, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoTerminal
	}

	fmt.Fprint(out, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}
