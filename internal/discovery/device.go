package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Device represents an Axis device found on the network
type Device struct {
	// Instance is the advertised service instance (e.g., "AXIS M1065-L - ACCC8E000001")
	Instance string

	// Model is the product name taken from the instance (e.g., "AXIS M1065-L")
	Model string

	// Serial is the device serial number, which Axis sets to the MAC address
	Serial string

	// Hostname is the mDNS hostname (e.g., "axis-accc8e000001.local.")
	Hostname string

	// IP is the preferred address, IPv4 when one was advertised
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains the mDNS TXT record data (e.g., "macaddress=ACCC8E000001")
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("%s %s at %s", d.Model, d.Serial, net.JoinHostPort(d.IP, strconv.Itoa(d.Port)))
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	host := d.IP
	if d.Port != DefaultPort {
		host = net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
	} else if ip := net.ParseIP(d.IP); ip != nil && ip.To4() == nil {
		host = "[" + d.IP + "]"
	}
	return "http://" + host
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
