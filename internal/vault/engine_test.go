package vault

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/harakeke-dev/harakeke/internal/errors"
)

// sharedRSA holds one RSA engine per test run. Generating a 4096-bit key
// pair is slow, so tests that only need a working engine share this one.
var sharedRSA struct {
	once   sync.Once
	engine *Engine
	dir    string
	err    error
}

func sharedRSAEngine(t *testing.T) *Engine {
	t.Helper()
	sharedRSA.once.Do(func() {
		sharedRSA.dir, sharedRSA.err = os.MkdirTemp("", "harakeke-vault-test-*")
		if sharedRSA.err != nil {
			return
		}
		sharedRSA.engine, sharedRSA.err = New(ModeRSA, sharedRSA.dir)
	})
	if sharedRSA.err != nil {
		t.Fatalf("Failed to set up shared RSA engine: %v", sharedRSA.err)
	}
	return sharedRSA.engine
}

// writeTestFile is a helper to write test files with 0600 permissions.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func newFernetEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := New(ModeFernet, t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create fernet engine: %v", err)
	}
	return engine
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"rsa", ModeRSA, false},
		{"fernet", ModeFernet, false},
		{"", "", true},
		{"RSA", "", true},
		{"aes", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMode(%q) expected error, got %q", tt.input, got)
				}
				if !errors.Is(err, errors.ErrInvalidMode) {
					t.Errorf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewRejectsInvalidMode(t *testing.T) {
	if _, err := New(Mode("des"), t.TempDir()); !errors.Is(err, errors.ErrInvalidMode) {
		t.Fatalf("New with invalid mode: error = %v, want ErrInvalidMode", err)
	}
}

func TestKeyGenerationIdempotence(t *testing.T) {
	engine := sharedRSAEngine(t)

	before := make(map[string][]byte)
	for _, path := range engine.KeyFiles() {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read key file %s: %v", path, err)
		}
		before[path] = data
	}

	// A second engine against the same populated key directory must load,
	// not regenerate.
	if _, err := New(ModeRSA, engine.KeyDir()); err != nil {
		t.Fatalf("Failed to reopen engine: %v", err)
	}

	for path, want := range before {
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to re-read key file %s: %v", path, err)
		}
		if string(got) != string(want) {
			t.Errorf("Key file %s changed after reopening the engine", path)
		}
	}
}

func TestPrivateKeyPermissions(t *testing.T) {
	engine := sharedRSAEngine(t)

	privatePath := filepath.Join(engine.KeyDir(), PrivateKeyFile)
	info, err := os.Stat(privatePath)
	if err != nil {
		t.Fatalf("Failed to stat private key: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("Private key is group/world accessible: mode %o", perm)
	}
}

func TestEmptyKeyFileTriggersRegeneration(t *testing.T) {
	keyDir := t.TempDir()
	if _, err := New(ModeFernet, keyDir); err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	keyPath := filepath.Join(keyDir, FernetKeyFile)
	original, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatalf("Failed to read key file: %v", err)
	}

	if err := os.Truncate(keyPath, 0); err != nil {
		t.Fatalf("Failed to truncate key file: %v", err)
	}

	if _, err := New(ModeFernet, keyDir); err != nil {
		t.Fatalf("Failed to recreate engine: %v", err)
	}

	regenerated, err := os.ReadFile(keyPath)
	if err != nil {
		t.Fatalf("Failed to read regenerated key file: %v", err)
	}
	if len(regenerated) == 0 {
		t.Fatal("Key file still empty after reconstruction")
	}
	if string(regenerated) == string(original) {
		t.Error("Expected a fresh key after truncation, got the old one back")
	}
}

func TestNeedsGeneration(t *testing.T) {
	dir := t.TempDir()

	full := filepath.Join(dir, "full")
	if err := os.WriteFile(full, []byte("key material"), 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, nil, 0600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name  string
		paths []string
		want  bool
	}{
		{"all present", []string{full}, false},
		{"one missing", []string{full, missing}, true},
		{"one empty", []string{full, empty}, true},
		{"all missing", []string{missing}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsGeneration(tt.paths); got != tt.want {
				t.Errorf("needsGeneration(%v) = %v, want %v", tt.paths, got, tt.want)
			}
		})
	}
}
