// Package errors defines sentinel errors shared across Harakeke.
//
// Callers match these with errors.Is after the usual fmt.Errorf %w
// wrapping; the wrapped message carries the context (paths, modes, sizes).
package errors
