// Package credstore reads and writes the encrypted credential file holding
// the API id/token pair the CLI authenticates with.
//
// On disk the file is an RSA-encrypted blob produced by the vault engine.
// Files written before encryption was enabled are plain KEY=value text;
// those still load, and are upgraded to the encrypted form on the next
// write.
package credstore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harakeke-dev/harakeke/internal/errors"
	"github.com/harakeke-dev/harakeke/internal/vault"
)

// Keys of the credential pair within the file.
const (
	KeyAPIID    = "api_id"
	KeyAPIToken = "api_token"
)

// Credentials is the decoded credential file: the API id/token pair plus
// any extra variables the file carried.
type Credentials struct {
	ID    string
	Token string
	Extra map[string]string

	// WasEncrypted records which on-disk variant the file matched, so
	// callers can warn when credentials are still sitting in plaintext.
	WasEncrypted bool
}

// Read loads and decodes the credential file at path using the engine.
func Read(engine *vault.Engine, path string) (*Credentials, error) {
	file, err := engine.ReadConfigFile(path)
	if err != nil {
		return nil, err
	}

	values := file.Values()
	creds := &Credentials{
		Extra:        make(map[string]string),
		WasEncrypted: file.Format == vault.FormatEncrypted,
	}
	for key, value := range values {
		switch key {
		case KeyAPIID:
			creds.ID = value
		case KeyAPIToken:
			creds.Token = value
		default:
			creds.Extra[key] = value
		}
	}

	if creds.ID == "" || creds.Token == "" {
		return nil, fmt.Errorf("%w in %s", errors.ErrCredentialsMissing, path)
	}

	return creds, nil
}

// Write renders the credentials as KEY=value lines and encrypts them to
// path, replacing whatever was there.
func Write(engine *vault.Engine, path string, creds *Credentials) error {
	if creds.ID == "" || creds.Token == "" {
		return errors.ErrCredentialsMissing
	}

	_, err := engine.EncryptStringTo(render(creds), path)
	return err
}

// render produces the plaintext credential file. The id/token pair comes
// first; extra variables follow in sorted order so writes are
// deterministic.
func render(creds *Credentials) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s\n", KeyAPIID, creds.ID)
	fmt.Fprintf(&b, "%s=%s\n", KeyAPIToken, creds.Token)

	keys := make([]string, 0, len(creds.Extra))
	for key := range creds.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s\n", key, creds.Extra[key])
	}

	return b.String()
}
