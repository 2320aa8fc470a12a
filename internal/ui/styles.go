// Package ui renders tl CLI output with optional ANSI color.
package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent  = 74  // blue
	colorCmd     = 250 // light gray
	colorStation = 179 // amber
	colorDist    = 114 // green
	colorMuted   = 245 // medium gray
	colorError   = 203 // red
)

var noColor bool

func paint(color int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return paint(colorCmd, s) }

// RenderError returns s in the error (red) color.
func RenderError(s string) string { return paint(colorError, s) }

// RenderStation returns a station code in the station color.
func RenderStation(code string) string { return paint(colorStation, code) }

// RenderDistance formats km with a unit suffix.
func RenderDistance(km float64) string {
	return paint(colorDist, strconv.FormatFloat(km, 'f', -1, 64)+" km")
}

// RenderPath joins station codes with muted arrows.
func RenderPath(path []string) string {
	parts := make([]string, len(path))
	for i, code := range path {
		parts[i] = RenderStation(code)
	}
	return strings.Join(parts, RenderMuted(" → "))
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}

// SetColor enables or disables color output.
func SetColor(enabled bool) {
	noColor = !enabled
}
