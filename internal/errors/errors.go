package errors

import "errors"

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// Mode errors indicate the engine was asked for something its mode cannot do.
var (
	// ErrInvalidMode indicates an unknown encryption mode string.
	ErrInvalidMode = errors.New("invalid encryption mode")

	// ErrWrongMode indicates an operation not supported by the engine's mode.
	ErrWrongMode = errors.New("operation not supported in this mode")
)

// Cryptographic errors indicate failures during encryption or decryption.
var (
	// ErrMalformedBlob indicates an encrypted blob whose structure is invalid.
	ErrMalformedBlob = errors.New("malformed encrypted blob")

	// ErrKeyTooSmall indicates an RSA key too small to be usable.
	ErrKeyTooSmall = errors.New("RSA key too small")

	// ErrInvalidPrivateKey indicates the private key is malformed or unsupported.
	ErrInvalidPrivateKey = errors.New("invalid or unsupported private key format")
)

// Credential errors indicate issues with the stored credential pair.
var (
	// ErrCredentialsMissing indicates the credential file lacks the id/token pair.
	ErrCredentialsMissing = errors.New("credential id/token pair missing")

	// ErrProfileNotFound indicates the named profile is not configured.
	ErrProfileNotFound = errors.New("profile not found")
)
