// Package utils provides small filesystem, terminal, and stdin helpers
// shared by the command layer.
package utils
