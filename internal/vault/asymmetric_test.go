package vault

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/harakeke-dev/harakeke/internal/errors"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	data := make([]byte, n)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("Failed to generate random bytes: %v", err)
	}
	return data
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	engine := sharedRSAEngine(t)

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"single byte", []byte{0x42}},
		{"hello world", []byte("hello world")},
		{"binary blob", randomBytes(t, 2000)},
		// Random data is incompressible, so 5000 bytes spans multiple
		// 470-byte chunks after compression.
		{"multi-chunk blob", randomBytes(t, 5000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := engine.EncryptBytes(tt.plaintext)
			if err != nil {
				t.Fatalf("EncryptBytes failed: %v", err)
			}

			decrypted, err := engine.DecryptBytes(blob)
			if err != nil {
				t.Fatalf("DecryptBytes failed: %v", err)
			}
			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("Round trip mismatch: got %d bytes, want %d bytes", len(decrypted), len(tt.plaintext))
			}
		})
	}
}

func TestHelloWorldFileScenario(t *testing.T) {
	engine := sharedRSAEngine(t)
	outputPath := filepath.Join(t.TempDir(), "hello.enc")

	written, err := engine.EncryptStringTo("hello world", outputPath)
	if err != nil {
		t.Fatalf("EncryptStringTo failed: %v", err)
	}
	if written != outputPath {
		t.Errorf("EncryptStringTo returned %s, want %s", written, outputPath)
	}

	plaintext, err := engine.DecryptFile(outputPath)
	if err != nil {
		t.Fatalf("DecryptFile failed: %v", err)
	}
	if plaintext != "hello world" {
		t.Errorf("DecryptFile = %q, want %q", plaintext, "hello world")
	}

	// The blob must decode to whole ciphertext blocks (512 bytes each for
	// the generated 4096-bit key).
	blob, err := engine.EncryptBytes([]byte("hello world"))
	if err != nil {
		t.Fatalf("EncryptBytes failed: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		t.Fatalf("Blob is not valid base64: %v", err)
	}
	blockSize := engine.privateKey.Size()
	if blockSize != 512 {
		t.Fatalf("Generated key block size = %d, want 512", blockSize)
	}
	if len(raw)%blockSize != 0 {
		t.Errorf("Decoded blob length %d is not a multiple of %d", len(raw), blockSize)
	}
}

func TestEncryptFileToDefaultPath(t *testing.T) {
	engine := sharedRSAEngine(t)
	dir := t.TempDir()

	inputPath := filepath.Join(dir, "configs.ini")
	content := "[global]\nBATCH=1000\n"
	writeTestFile(t, inputPath, content)

	written, err := engine.EncryptFileTo(inputPath, "")
	if err != nil {
		t.Fatalf("EncryptFileTo failed: %v", err)
	}
	want := filepath.Join(dir, "configs_encrypted.ini")
	if written != want {
		t.Errorf("EncryptFileTo wrote to %s, want %s", written, want)
	}

	plaintext, err := engine.DecryptFile(written)
	if err != nil {
		t.Fatalf("DecryptFile failed: %v", err)
	}
	if plaintext != content {
		t.Errorf("Round trip through files mismatch: got %q, want %q", plaintext, content)
	}
}

// TestChunkBoundaryRule pins the loop-termination rule: a payload of
// exactly k full chunks still produces a final, fully-padded block, so the
// ciphertext always holds k+1 blocks.
func TestChunkBoundaryRule(t *testing.T) {
	engine := sharedRSAEngine(t)
	size := chunkSize(engine.publicKey)
	blockSize := engine.publicKey.Size()

	tests := []struct {
		name       string
		dataLen    int
		wantBlocks int
	}{
		{"empty", 0, 1},
		{"one byte", 1, 1},
		{"one byte short of a chunk", size - 1, 1},
		{"exactly one chunk", size, 2},
		{"one chunk and one byte", size + 1, 2},
		{"exactly three chunks", 3 * size, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := encryptChunks(engine.publicKey, randomBytes(t, tt.dataLen))
			if err != nil {
				t.Fatalf("encryptChunks failed: %v", err)
			}
			if got := len(encrypted) / blockSize; got != tt.wantBlocks {
				t.Errorf("%d-byte payload produced %d blocks, want %d", tt.dataLen, got, tt.wantBlocks)
			}
		})
	}
}

// TestChunkPaddingSurvivesDecrypt checks that the zero padding added to the
// final chunk comes back from decryptChunks and is then dropped by the
// zlib stage, not by the RSA stage.
func TestChunkPaddingSurvivesDecrypt(t *testing.T) {
	engine := sharedRSAEngine(t)
	size := chunkSize(engine.publicKey)

	data := randomBytes(t, size+7)
	encrypted, err := encryptChunks(engine.publicKey, data)
	if err != nil {
		t.Fatalf("encryptChunks failed: %v", err)
	}

	decrypted, err := decryptChunks(engine.privateKey, encrypted)
	if err != nil {
		t.Fatalf("decryptChunks failed: %v", err)
	}

	if len(decrypted) != 2*size {
		t.Fatalf("decryptChunks returned %d bytes, want %d (padded)", len(decrypted), 2*size)
	}
	if !bytes.Equal(decrypted[:len(data)], data) {
		t.Error("Decrypted payload does not match original")
	}
	for i, b := range decrypted[len(data):] {
		if b != 0 {
			t.Fatalf("Padding byte %d is %#x, want zero", i, b)
		}
	}
}

func TestDecompressIgnoresTrailingPadding(t *testing.T) {
	original := []byte("payload that will gain trailing zeros")
	compressed, err := compress(original)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}

	padded := append(compressed, make([]byte, 470)...)
	out, err := decompress(padded)
	if err != nil {
		t.Fatalf("decompress failed on padded stream: %v", err)
	}
	if !bytes.Equal(out, original) {
		t.Errorf("decompress = %q, want %q", out, original)
	}
}

func TestDecryptBytesRejectsMalformedInput(t *testing.T) {
	engine := sharedRSAEngine(t)

	t.Run("invalid base64", func(t *testing.T) {
		if _, err := engine.DecryptBytes("not base64!!!"); err == nil {
			t.Fatal("Expected error for invalid base64")
		}
	})

	t.Run("truncated ciphertext", func(t *testing.T) {
		blob, err := engine.EncryptBytes([]byte("some content"))
		if err != nil {
			t.Fatalf("EncryptBytes failed: %v", err)
		}
		raw, err := base64.StdEncoding.DecodeString(blob)
		if err != nil {
			t.Fatalf("Failed to decode blob: %v", err)
		}
		truncated := base64.StdEncoding.EncodeToString(raw[:len(raw)-10])
		if _, err := engine.DecryptBytes(truncated); !errors.Is(err, errors.ErrMalformedBlob) {
			t.Errorf("DecryptBytes error = %v, want ErrMalformedBlob", err)
		}
	})

	t.Run("empty blob", func(t *testing.T) {
		if _, err := engine.DecryptBytes(""); !errors.Is(err, errors.ErrMalformedBlob) {
			t.Errorf("DecryptBytes error = %v, want ErrMalformedBlob", err)
		}
	})
}

func TestDecryptBytesRejectsForeignKey(t *testing.T) {
	engine := sharedRSAEngine(t)

	// Ciphertext produced under a different key pair must fail OAEP, not
	// silently decrypt. 2048-bit keys keep this test fast.
	foreignKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate foreign key: %v", err)
	}

	foreignDir := t.TempDir()
	if err := writeRSAKeyPair(foreignDir, foreignKey); err != nil {
		t.Fatalf("Failed to write foreign key pair: %v", err)
	}
	foreignEngine, err := New(ModeRSA, foreignDir)
	if err != nil {
		t.Fatalf("Failed to open foreign engine: %v", err)
	}

	// 300 incompressible bytes span two 256-byte foreign blocks, which line
	// up with one 512-byte block of the shared key. That gets past the
	// length check and exercises the OAEP failure itself.
	blob, err := foreignEngine.EncryptBytes(randomBytes(t, 300))
	if err != nil {
		t.Fatalf("EncryptBytes failed: %v", err)
	}

	if _, err := engine.DecryptBytes(blob); err == nil {
		t.Fatal("Expected decryption under the wrong key to fail")
	}
}

func TestEncryptedPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"configs.ini", "configs_encrypted.ini"},
		{"path/to/configs.ini", "path/to/configs_encrypted.ini"},
		{".env", "_encrypted.env"},
		{"noext", "noext_encrypted"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := EncryptedPath(tt.input); got != tt.want {
				t.Errorf("EncryptedPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsEncryptedPath(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"configs_encrypted.ini", true},
		{"path/to/configs_encrypted.ini", true},
		{"noext_encrypted", true},
		{"configs.ini", false},
		{"encrypted.ini", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsEncryptedPath(tt.input); got != tt.want {
				t.Errorf("IsEncryptedPath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
