package vault

import (
	"crypto/rsa"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"

	"github.com/harakeke-dev/harakeke/internal/errors"
)

// minImportedKeyBits is the smallest RSA key size accepted on import.
// Generated keys are 4096 bits; imported ones only have to clear the
// current baseline for RSA.
const minImportedKeyBits = 2048

// ImportPrivateKey replaces the engine's key pair with a caller-supplied
// private key in PKCS#1, PKCS#8, or OpenSSH PEM format. The matching public
// key is derived and both halves are written to the key directory. Files
// encrypted with the previous pair become undecryptable. RSA mode only.
func (e *Engine) ImportPrivateKey(pemBytes []byte) error {
	if e.mode != ModeRSA {
		return fmt.Errorf("%w: key import requires %q mode, engine is in %q mode", errors.ErrWrongMode, ModeRSA, e.mode)
	}

	key, err := parsePrivateKey(pemBytes)
	if err != nil {
		return err
	}
	if bits := key.N.BitLen(); bits < minImportedKeyBits {
		return fmt.Errorf("%w: %d-bit key, need at least %d bits", errors.ErrKeyTooSmall, bits, minImportedKeyBits)
	}

	if err := writeRSAKeyPair(e.keyDir, key); err != nil {
		return err
	}

	e.privateKey = key
	e.publicKey = &key.PublicKey
	return nil
}

func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: input is not PEM encoded", errors.ErrInvalidPrivateKey)
	}

	switch block.Type {
	case "RSA PRIVATE KEY", "PRIVATE KEY", "OPENSSH PRIVATE KEY":
		parsed, err := ssh.ParseRawPrivateKey(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPrivateKey, err)
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T is not an RSA key", errors.ErrInvalidPrivateKey, parsed)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("%w: unsupported PEM block type %q", errors.ErrInvalidPrivateKey, block.Type)
	}
}
