package vault

import (
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fernet/fernet-go"

	"github.com/harakeke-dev/harakeke/internal/errors"
)

// Mode selects which encryption scheme an engine uses.
type Mode string

const (
	// ModeRSA encrypts whole files with a local RSA key pair.
	ModeRSA Mode = "rsa"
	// ModeFernet encrypts individual values with a symmetric Fernet key.
	ModeFernet Mode = "fernet"
)

// Names of the key files inside the key directory.
const (
	DefaultKeyDir  = ".secrets"
	PublicKeyFile  = "public.pem"
	PrivateKeyFile = "private.pem"
	FernetKeyFile  = ".fernet.key"
)

// ParseMode validates a mode name. Mode names are case sensitive.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case ModeRSA, ModeFernet:
		return Mode(name), nil
	default:
		return "", fmt.Errorf("%w: %q (valid modes: %q, %q)", errors.ErrInvalidMode, name, ModeRSA, ModeFernet)
	}
}

// Engine holds the key material for one mode and key directory. All
// encrypt and decrypt operations go through an Engine.
type Engine struct {
	mode   Mode
	keyDir string

	publicKey  *rsa.PublicKey
	privateKey *rsa.PrivateKey
	fernetKey  *fernet.Key
}

// New opens an engine for the given mode, generating key material in
// keyDir on first use. An empty keyDir falls back to DefaultKeyDir.
//
// Key generation is not guarded against concurrent processes: two
// instances racing on an empty key directory can each generate a pair and
// one overwrites the other. Callers that script parallel runs should
// generate keys up front with a single 'keys init'.
func New(mode Mode, keyDir string) (*Engine, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if keyDir == "" {
		keyDir = DefaultKeyDir
	}

	e := &Engine{mode: mode, keyDir: keyDir}
	if err := e.ensureKeys(); err != nil {
		return nil, err
	}
	if err := e.loadKeys(); err != nil {
		return nil, err
	}
	return e, nil
}

// Mode returns the engine's encryption mode.
func (e *Engine) Mode() Mode { return e.mode }

// KeyDir returns the directory holding the engine's key material.
func (e *Engine) KeyDir() string { return e.keyDir }

// KeyFiles returns the paths of the mode's key files. In RSA mode the
// public key comes first, then the private key.
func (e *Engine) KeyFiles() []string {
	switch e.mode {
	case ModeRSA:
		return []string{
			filepath.Join(e.keyDir, PublicKeyFile),
			filepath.Join(e.keyDir, PrivateKeyFile),
		}
	default:
		return []string{filepath.Join(e.keyDir, FernetKeyFile)}
	}
}

// needsGeneration reports whether any of the given key files is missing or
// empty. A zero-length key file is treated the same as a missing one; both
// trigger regeneration of the whole set.
func needsGeneration(paths []string) bool {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			return true
		}
	}
	return false
}

func (e *Engine) ensureKeys() error {
	if !needsGeneration(e.KeyFiles()) {
		return nil
	}

	switch e.mode {
	case ModeRSA:
		key, err := generateRSAKeyPair()
		if err != nil {
			return err
		}
		return writeRSAKeyPair(e.keyDir, key)
	default:
		return generateFernetKey(e.keyDir)
	}
}

func (e *Engine) loadKeys() error {
	switch e.mode {
	case ModeRSA:
		publicKey, privateKey, err := loadRSAKeyPair(e.keyDir)
		if err != nil {
			return err
		}
		e.publicKey = publicKey
		e.privateKey = privateKey
	default:
		key, err := loadFernetKey(e.keyDir)
		if err != nil {
			return err
		}
		e.fernetKey = key
	}
	return nil
}
