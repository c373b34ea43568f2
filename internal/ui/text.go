package ui

import (
	"os"
	"strings"

	"github.com/fatih/color"
)

// Symbols prefixed to user-facing status lines.
const (
	CheckMark = "✓"
	CrossMark = "✗"
	Arrow     = "→"
)

// noColor reports whether colored output should be suppressed, honoring
// the NO_COLOR convention.
func noColor() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// Success formats a leading success marker.
func Success() string {
	if noColor() {
		return CheckMark
	}
	return color.GreenString(CheckMark)
}

// Failure formats a leading failure marker.
func Failure() string {
	if noColor() {
		return CrossMark
	}
	return color.RedString(CrossMark)
}

// Hint formats a leading hint marker for follow-up suggestions.
func Hint() string {
	if noColor() {
		return Arrow
	}
	return color.CyanString(Arrow)
}

// EnsureNewline returns s terminated by exactly one trailing newline.
// Spinner final messages pass through here so command output always ends
// cleanly.
func EnsureNewline(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimRight(s, "\n") + "\n"
}
