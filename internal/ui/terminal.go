package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether stdout gets ANSI colors: the environment
// decides when it says anything, else whether stdout is a terminal.
func ShouldUseColor() bool {
	if use, ok := colorFromEnv(os.Getenv); ok {
		return use
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// colorFromEnv applies NO_COLOR (https://no-color.org), CLICOLOR_FORCE,
// CLICOLOR and TERM=dumb in that order. ok is false when none is set.
func colorFromEnv(getenv func(string) string) (use, ok bool) {
	switch {
	case getenv("NO_COLOR") != "":
		return false, true
	case strings.TrimSpace(getenv("CLICOLOR_FORCE")) == "1":
		return true, true
	case strings.TrimSpace(getenv("CLICOLOR")) == "0":
		return false, true
	case getenv("TERM") == "dumb":
		return false, true
	}
	return false, false
}
