package vault

import (
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/harakeke-dev/harakeke/internal/errors"
)

// EncryptString encrypts a single value into a Fernet token. Fernet mode
// only.
func (e *Engine) EncryptString(plaintext string) (string, error) {
	if e.mode != ModeFernet {
		return "", fmt.Errorf("%w: value encryption requires %q mode, engine is in %q mode", errors.ErrWrongMode, ModeFernet, e.mode)
	}

	token, err := fernet.EncryptAndSign([]byte(plaintext), e.fernetKey)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}
	return string(token), nil
}

// DecryptString decrypts a Fernet token back into its value. Input that is
// not a valid token for the loaded key is returned unchanged; config files
// written before encryption was enabled keep working this way.
func (e *Engine) DecryptString(value string) string {
	plaintext, _ := e.DecryptStringStrict(value)
	return plaintext
}

// DecryptStringStrict is DecryptString plus a flag reporting whether the
// value actually decrypted. Callers that must reject plaintext check the
// flag.
func (e *Engine) DecryptStringStrict(value string) (string, bool) {
	if e.fernetKey == nil {
		return value, false
	}

	plaintext := fernet.VerifyAndDecrypt([]byte(value), 0, []*fernet.Key{e.fernetKey})
	if plaintext == nil {
		return value, false
	}
	return string(plaintext), true
}
