package vault

import (
	"bytes"
	"compress/zlib"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" // #nosec G505 -- OAEP hash fixed by the on-disk envelope format.
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harakeke-dev/harakeke/internal/errors"
)

// oaepOverhead is the fixed per-block overhead of RSA-OAEP with SHA-1:
// 2*hLen + 2 = 42 bytes. Together with the key modulus it determines the
// plaintext chunk size (470 bytes for a 4096-bit key).
const oaepOverhead = 2*sha1.Size + 2

// chunkSize returns how many plaintext bytes fit into one OAEP block for
// the given public key. Derived from the loaded key rather than hardcoded
// so imported keys of other sizes round-trip correctly.
func chunkSize(publicKey *rsa.PublicKey) int {
	return publicKey.Size() - oaepOverhead
}

// EncryptFileTo encrypts the contents of inputPath and writes the encrypted
// blob to outputPath. When outputPath is empty the blob is written next to
// the input as <name>_encrypted<ext>. Returns the path written. RSA mode
// only.
func (e *Engine) EncryptFileTo(inputPath, outputPath string) (string, error) {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to read input file %s: %w", inputPath, err)
	}
	if outputPath == "" {
		outputPath = EncryptedPath(inputPath)
	}
	return e.encryptToFile(content, outputPath)
}

// EncryptStringTo encrypts a plaintext string and writes the encrypted blob
// to outputPath. Returns the path written. RSA mode only.
func (e *Engine) EncryptStringTo(plaintext, outputPath string) (string, error) {
	if outputPath == "" {
		return "", fmt.Errorf("missing output path for encrypted string")
	}
	return e.encryptToFile([]byte(plaintext), outputPath)
}

func (e *Engine) encryptToFile(content []byte, outputPath string) (string, error) {
	blob, err := e.EncryptBytes(content)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(outputPath, []byte(blob), 0600); err != nil {
		return "", fmt.Errorf("failed to write encrypted file %s: %w", outputPath, err)
	}

	return outputPath, nil
}

// DecryptFile reads an encrypted blob from disk and returns the original
// plaintext. RSA mode only.
func (e *Engine) DecryptFile(path string) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read encrypted file %s: %w", path, err)
	}
	plaintext, err := e.DecryptBytes(string(blob))
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// EncryptBytes encrypts an arbitrary byte sequence into a base64 text blob:
// zlib-compress, split into chunks of chunkSize bytes, zero-pad the final
// short chunk, RSA-OAEP-encrypt each chunk, concatenate the fixed-size
// ciphertext blocks, base64-encode. RSA mode only.
func (e *Engine) EncryptBytes(plaintext []byte) (string, error) {
	if e.mode != ModeRSA {
		return "", fmt.Errorf("%w: file encryption requires %q mode, engine is in %q mode", errors.ErrWrongMode, ModeRSA, e.mode)
	}

	compressed, err := compress(plaintext)
	if err != nil {
		return "", err
	}

	encrypted, err := encryptChunks(e.publicKey, compressed)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(encrypted), nil
}

// DecryptBytes reverses EncryptBytes: base64-decode, split into blocks of
// the private key's modulus size, RSA-OAEP-decrypt each block, then
// zlib-decompress the concatenation. RSA mode only.
func (e *Engine) DecryptBytes(blob string) ([]byte, error) {
	if e.mode != ModeRSA {
		return nil, fmt.Errorf("%w: file decryption requires %q mode, engine is in %q mode", errors.ErrWrongMode, ModeRSA, e.mode)
	}

	encrypted, err := base64.StdEncoding.DecodeString(strings.TrimSpace(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to base64-decode encrypted blob: %w", err)
	}

	decrypted, err := decryptChunks(e.privateKey, encrypted)
	if err != nil {
		return nil, err
	}

	return decompress(decrypted)
}

// encryptChunks splits data into chunkSize pieces and OAEP-encrypts each
// one independently.
//
// The loop terminates on the first chunk shorter than chunkSize, which is
// zero-padded up to a full chunk before encryption. Data that is an exact
// multiple of the chunk size therefore gets one extra, fully-padded block;
// the padding lies past the logical end of the compressed stream and is
// discarded during decompression.
func encryptChunks(publicKey *rsa.PublicKey, data []byte) ([]byte, error) {
	size := chunkSize(publicKey)
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d-bit key leaves no room for OAEP payload", errors.ErrKeyTooSmall, publicKey.N.BitLen())
	}

	var encrypted []byte
	for offset := 0; ; offset += size {
		end := min(offset+size, len(data))
		chunk := data[offset:end]

		last := len(chunk) < size
		if last {
			chunk = append(chunk, make([]byte, size-len(chunk))...)
		}

		block, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, publicKey, chunk, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt chunk at offset %d: %w", offset, err)
		}
		encrypted = append(encrypted, block...)

		if last {
			break
		}
	}

	return encrypted, nil
}

// decryptChunks splits the raw ciphertext into modulus-sized blocks and
// OAEP-decrypts each one. The block size comes from the private key and is
// independent of the plaintext chunk size.
func decryptChunks(privateKey *rsa.PrivateKey, encrypted []byte) ([]byte, error) {
	blockSize := privateKey.Size()
	if len(encrypted) == 0 || len(encrypted)%blockSize != 0 {
		return nil, fmt.Errorf("%w: blob length %d is not a multiple of the %d-byte block size", errors.ErrMalformedBlob, len(encrypted), blockSize)
	}

	var decrypted []byte
	for offset := 0; offset < len(encrypted); offset += blockSize {
		chunk, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, privateKey, encrypted[offset:offset+blockSize], nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt block at offset %d: %w", offset, err)
		}
		decrypted = append(decrypted, chunk...)
	}

	return decrypted, nil
}

// EncryptedPath derives the default output path for an encrypted file:
// the input name with "_encrypted" inserted before the extension.
func EncryptedPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + "_encrypted" + ext
}

// IsEncryptedPath reports whether a path already follows the EncryptedPath
// naming convention.
func IsEncryptedPath(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.HasSuffix(strings.TrimSuffix(base, ext), "_encrypted")
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress plaintext: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress plaintext: %w", err)
	}
	return buf.Bytes(), nil
}

// decompress inflates a zlib stream, ignoring any trailing bytes after the
// stream's logical end (the final chunk's zero padding lands there).
func decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress decrypted data: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress decrypted data: %w", err)
	}
	return out, nil
}
