package utils

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadSecret prompts the user for a secret value without echoing input.
// Returns an error if stdin is not a terminal.
func ReadSecret(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read secret: stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	return secret, nil
}
