// Package config provides user configuration management for vapixctl.
//
// This package manages a YAML-based configuration file listing saved devices
// by name, together with what each device last reported about itself, and
// application preferences. The configuration follows OS-specific conventions
// for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/vapix/config.yaml or $HOME/.config/vapix/config.yaml
//   - macOS: $HOME/.config/vapix/config.yaml
//   - Windows: %LOCALAPPDATA%\vapix\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores device passwords. AddDevice rejects
// URLs that carry one.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := registry.AddDevice("lobby", "http://root@192.168.0.90"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
