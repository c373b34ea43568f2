package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/harakeke-dev/harakeke/internal/errors"
	"github.com/harakeke-dev/harakeke/internal/vault"
)

// UserConfig is the persisted CLI configuration at
// <config-dir>/config.toml.
type UserConfig struct {
	Install  Install            `toml:"install"`
	Defaults Defaults           `toml:"defaults"`
	Profiles map[string]Profile `toml:"profiles"`
}

// Install identifies this installation; the UUID is assigned on first run.
type Install struct {
	UUID      string    `toml:"install_uuid"`
	CreatedAt time.Time `toml:"created_at"`
}

// Defaults apply when no profile is selected.
type Defaults struct {
	Mode   string `toml:"mode"`
	KeyDir string `toml:"key_dir"`
}

// Profile points a named environment at its own key material and encrypted
// credential file.
type Profile struct {
	KeyDir    string `toml:"key_dir"`
	CredsFile string `toml:"creds_file"`
}

// ConfigDir returns the directory holding the CLI's own configuration,
// overridable via HARAKEKE_CONFIG_DIR for tests and sandboxed installs.
func ConfigDir() (string, error) {
	if dir := os.Getenv("HARAKEKE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".harakeke"), nil
}

func configPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadUserConfig loads the user configuration, returning defaults when the
// file does not exist yet.
func LoadUserConfig() (*UserConfig, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	config := &UserConfig{
		Defaults: Defaults{
			Mode:   string(vault.ModeRSA),
			KeyDir: vault.DefaultKeyDir,
		},
		Profiles: make(map[string]Profile),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(path, config); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	return config, nil
}

// SaveUserConfig saves the user configuration to the config file.
func SaveUserConfig(config *UserConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := SaveTOML(path, config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}
	return nil
}

// EnsureUserConfig loads the configuration and assigns an install UUID on
// first run.
func EnsureUserConfig() (*UserConfig, error) {
	config, err := LoadUserConfig()
	if err != nil {
		return nil, err
	}

	if config.Install.UUID == "" {
		config.Install.UUID = uuid.New().String()
		config.Install.CreatedAt = time.Now().UTC()
		if err := SaveUserConfig(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// ResolveProfile returns the key directory and credential file for the
// named profile, falling back to the defaults section when name is empty.
// Relative paths in a profile resolve under the config directory, so
// profiles work from any working directory.
func (c *UserConfig) ResolveProfile(name string) (keyDir, credsFile string, err error) {
	if name == "" {
		return c.Defaults.KeyDir, "", nil
	}

	profile, ok := c.Profiles[name]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", errors.ErrProfileNotFound, name)
	}

	dir, err := ConfigDir()
	if err != nil {
		return "", "", err
	}

	keyDir = profile.KeyDir
	if keyDir == "" {
		keyDir = filepath.Join(dir, "profiles", name, "keys")
	} else if !filepath.IsAbs(keyDir) {
		keyDir = filepath.Join(dir, keyDir)
	}

	credsFile = profile.CredsFile
	if credsFile == "" {
		credsFile = filepath.Join(dir, "profiles", name, "creds.env")
	} else if !filepath.IsAbs(credsFile) {
		credsFile = filepath.Join(dir, credsFile)
	}

	return keyDir, credsFile, nil
}
