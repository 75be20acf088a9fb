package config

import (
	"fmt"
	"net/url"
	"sort"
	"time"
)

// CurrentVersion is the configuration file format version.
const CurrentVersion = 1

// Registry represents the entire user configuration file.
// It stores the devices the CLI knows about and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by user-chosen name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device is a saved device. Identity fields are filled in from the device
// the first time the CLI talks to it.
type Device struct {
	URL             string    `yaml:"url"`                        // scheme://host[:port], never with a password
	Username        string    `yaml:"username,omitempty"`         // Empty means the device default
	SerialNumber    string    `yaml:"serial_number,omitempty"`    // As reported by the device
	Model           string    `yaml:"model,omitempty"`            // e.g. "AXIS M1065-L"
	FirmwareVersion string    `yaml:"firmware_version,omitempty"` // Last seen firmware
	Architecture    string    `yaml:"architecture,omitempty"`     // Properties.System.Architecture
	LastSeen        time.Time `yaml:"last_seen,omitempty"`        // Last successful contact
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DiscoverTimeout int    `yaml:"discover_timeout"`           // mDNS discovery timeout in seconds
	RequestTimeout  int    `yaml:"request_timeout"`            // Per-request HTTP timeout in seconds
	DefaultUsername string `yaml:"default_username,omitempty"` // Used when a device has no username
	// Passwords are NEVER stored in the config file
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: CurrentVersion,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			DiscoverTimeout: 5,
			RequestTimeout:  30,
			DefaultUsername: "root",
		},
	}
}

// GetDevice retrieves a device by name.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(name string) *Device {
	return r.Devices[name]
}

// AddDevice saves a device under name, replacing any previous entry. The URL
// must be http or https and must not carry a password; a username in the
// URL is moved to the Username field.
func (r *Registry) AddDevice(name, rawURL string) (*Device, error) {
	if name == "" {
		return nil, fmt.Errorf("device name is required")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid device URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid device URL %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid device URL %q: missing host", rawURL)
	}

	device := &Device{URL: (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			return nil, fmt.Errorf("passwords are never stored in the config file; remove it from the URL")
		}
		device.Username = u.User.Username()
	}

	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	r.Devices[name] = device
	return device, nil
}

// RemoveDevice deletes a device and reports whether it existed.
func (r *Registry) RemoveDevice(name string) bool {
	if _, ok := r.Devices[name]; !ok {
		return false
	}
	delete(r.Devices, name)
	return true
}

// Names returns the device names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindBySerial returns the name and entry of the device with serial.
func (r *Registry) FindBySerial(serial string) (string, *Device) {
	for _, name := range r.Names() {
		if d := r.Devices[name]; d.SerialNumber == serial {
			return name, d
		}
	}
	return "", nil
}

// UpdateIdentity records what a device reported about itself and marks it
// as seen now.
func (r *Registry) UpdateIdentity(name, serial, model, firmware, arch string) {
	device := r.Devices[name]
	if device == nil {
		return
	}
	device.SerialNumber = serial
	device.Model = model
	device.FirmwareVersion = firmware
	device.Architecture = arch
	device.LastSeen = time.Now()
}

// UsernameFor returns the username to present to a device.
func (r *Registry) UsernameFor(d *Device) string {
	if d != nil && d.Username != "" {
		return d.Username
	}
	if r.Preferences != nil && r.Preferences.DefaultUsername != "" {
		return r.Preferences.DefaultUsername
	}
	return ""
}
