package ui

import "fmt"

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent  = 74  // blue
	colorMuted   = 245 // medium gray
	colorSuccess = 114 // green
	colorWarn    = 179 // amber
	colorFailure = 203 // red
)

var noColor = !ShouldUseColor()

func paint(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderLevel colors s for a notice level ("success", "noop", "transient",
// "failure"). Unknown levels are left uncolored.
func RenderLevel(level, s string) string {
	switch level {
	case "success":
		return paint(colorSuccess, s)
	case "noop":
		return paint(colorMuted, s)
	case "transient":
		return paint(colorWarn, s)
	case "failure":
		return paint(colorFailure, s)
	}
	return s
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
