// Package ui provides shared formatting helpers for terminal output.
package ui
