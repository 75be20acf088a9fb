package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "vapix"
	configFile = "config.yaml"

	// EnvConfigPath replaces the default config file location.
	EnvConfigPath = "VAPIX_CONFIG"
)

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
	defaultRegistryErr  error

	// saveMu serializes writers within this process
	saveMu sync.Mutex
)

// GetConfigDir returns the per-user directory holding the config file:
//   - Windows: %LOCALAPPDATA%\vapix
//   - elsewhere: $XDG_CONFIG_HOME/vapix, falling back to ~/.config/vapix
//
// macOS uses ~/.config rather than ~/Library so the file is easy to find
// from a shell.
func GetConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			return filepath.Join(profile, "AppData", "Local", appName), nil
		}
		return "", errors.New("cannot locate config directory: LOCALAPPDATA and USERPROFILE are unset")
	}

	if runtime.GOOS != "darwin" {
		if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate config directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// GetConfigPath returns $VAPIX_CONFIG if set, else config.yaml in
// GetConfigDir.
func GetConfigPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadRegistry loads the registry from GetConfigPath once per process and
// returns the same instance afterwards.
func LoadRegistry() (*Registry, error) {
	defaultRegistryOnce.Do(func() {
		path, err := GetConfigPath()
		if err != nil {
			defaultRegistryErr = err
			return
		}
		defaultRegistry, defaultRegistryErr = LoadRegistryFrom(path)
	})
	return defaultRegistry, defaultRegistryErr
}

// LoadRegistryFrom reads the registry at path. A missing file is not an
// error; it yields NewRegistry().
func LoadRegistryFrom(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	reg := &Registry{}
	if err := yaml.Unmarshal(data, reg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if reg.Version != CurrentVersion {
		return nil, fmt.Errorf("%s: config version %d is not supported (want %d)", path, reg.Version, CurrentVersion)
	}

	defaults := NewRegistry()
	if reg.Devices == nil {
		reg.Devices = defaults.Devices
	}
	if reg.Preferences == nil {
		reg.Preferences = defaults.Preferences
	}
	return reg, nil
}

// Save writes the registry to GetConfigPath.
func (r *Registry) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return r.SaveTo(path)
}

const fileHeader = `# VAPIX Configuration File
# Devices known to vapixctl, by name.
#
# Passwords are never stored here. vapixctl reads them from VAPIX_PASSWORD
# or asks for them.
`

// SaveTo writes the registry to path, readable by the owner only. The file
// is replaced by rename so readers never see a partial write.
func (r *Registry) SaveTo(path string) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	body, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	data := append([]byte(fileHeader+"\n"), body...)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
