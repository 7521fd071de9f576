package ui

import (
	"fmt"

	"github.com/alfredjeanlab/switchboard/internal/model"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorOK     = 114 // green
	colorBusy   = 203 // red
	colorAway   = 179 // amber
)

var noColor bool

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

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return paint(colorCmd, s) }

// RenderError returns s in the busy (red) color.
func RenderError(s string) string { return paint(colorBusy, s) }

// RenderState colors an agent state by availability: available is green,
// on call red, and the two away states amber.
func RenderState(st model.AgentState) string {
	switch st {
	case model.StateAvailable:
		return paint(colorOK, string(st))
	case model.StateOnCall:
		return paint(colorBusy, string(st))
	case model.StateDoNotDisturb, model.StateOnLunch:
		return paint(colorAway, string(st))
	}
	return string(st)
}

// RenderHealth colors a health probe status.
func RenderHealth(status string) string {
	switch status {
	case "live", "ready", "ok":
		return paint(colorOK, status)
	case "":
		return status
	}
	return paint(colorBusy, status)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
