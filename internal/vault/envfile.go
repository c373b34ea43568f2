package vault

import (
	"fmt"
	"os"
	"strings"
)

// FileFormat tags which variant ReadConfigFile found on disk.
type FileFormat int

const (
	// FormatEncrypted means the file decrypted cleanly with the RSA key.
	FormatEncrypted FileFormat = iota
	// FormatPlaintext means the file was read as-is, either because the
	// engine has no RSA key or because decryption failed.
	FormatPlaintext
)

func (f FileFormat) String() string {
	if f == FormatEncrypted {
		return "encrypted"
	}
	return "plaintext"
}

// ConfigFile is the result of reading a configuration file from disk: its
// text plus the format it was stored in.
type ConfigFile struct {
	Format FileFormat
	Text   string
}

// ReadConfigFile reads a configuration file, decrypting it when the engine
// is in RSA mode. A file that fails to decrypt is returned as plaintext;
// only a missing or unreadable file is an error.
func (e *Engine) ReadConfigFile(path string) (*ConfigFile, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if e.mode == ModeRSA {
		if text, err := e.DecryptFile(path); err == nil {
			return &ConfigFile{Format: FormatEncrypted, Text: text}, nil
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return &ConfigFile{Format: FormatPlaintext, Text: string(raw)}, nil
}

// Values parses the file's text as KEY=value lines. Blank lines, comment
// lines, and lines without an equals sign are skipped. Keys and values are
// trimmed; a value may itself contain equals signs. When a key repeats the
// later line wins.
func (c *ConfigFile) Values() map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(c.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.TrimSpace(value)
	}
	return values
}
