package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateAndLoadFernetKey(t *testing.T) {
	keyDir := filepath.Join(t.TempDir(), "nested", "keys")

	if err := generateFernetKey(keyDir); err != nil {
		t.Fatalf("generateFernetKey failed: %v", err)
	}

	key, err := loadFernetKey(keyDir)
	if err != nil {
		t.Fatalf("loadFernetKey failed: %v", err)
	}
	if key == nil {
		t.Fatal("loadFernetKey returned nil key")
	}
}

func TestLoadFernetKeyTrimsWhitespace(t *testing.T) {
	keyDir := t.TempDir()
	if err := generateFernetKey(keyDir); err != nil {
		t.Fatalf("generateFernetKey failed: %v", err)
	}

	keyPath := filepath.Join(keyDir, FernetKeyFile)
	data, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatalf("Failed to read key file: %v", err)
	}
	// Editors love adding trailing newlines to key files.
	writeTestFile(t, keyPath, string(data)+"\n")

	if _, err := loadFernetKey(keyDir); err != nil {
		t.Errorf("loadFernetKey failed on key with trailing newline: %v", err)
	}
}

func TestLoadRSAKeyPairCorrupt(t *testing.T) {
	keyDir := t.TempDir()
	writeTestFile(t, filepath.Join(keyDir, PublicKeyFile), "not a pem file")
	writeTestFile(t, filepath.Join(keyDir, PrivateKeyFile), "not a pem file")

	// Corrupt key material is fatal; the engine must not regenerate over it.
	if _, _, err := loadRSAKeyPair(keyDir); err == nil {
		t.Fatal("Expected error for corrupt key files")
	}
}

func TestLoadPrivateKeyWrongPEMType(t *testing.T) {
	keyDir := t.TempDir()
	path := filepath.Join(keyDir, PrivateKeyFile)
	writeTestFile(t, path, "-----BEGIN CERTIFICATE-----\nYWJj\n-----END CERTIFICATE-----\n")

	if _, err := loadPrivateKey(path); err == nil {
		t.Fatal("Expected error for wrong PEM block type")
	}
}

func TestGeneratedKeyFilePermissions(t *testing.T) {
	engine := sharedRSAEngine(t)

	info, err := os.Stat(filepath.Join(engine.KeyDir(), PrivateKeyFile))
	if err != nil {
		t.Fatalf("Failed to stat private key: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Private key mode = %o, want 600", perm)
	}

	info, err = os.Stat(filepath.Join(engine.KeyDir(), PublicKeyFile))
	if err != nil {
		t.Fatalf("Failed to stat public key: %v", err)
	}
	// The public key only has to stay owner-readable; the umask may strip
	// the group/world bits of the requested 0664.
	if perm := info.Mode().Perm(); perm&0600 != 0600 {
		t.Errorf("Public key mode = %o, want owner read/write", perm)
	}
}
