package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/vapix/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type Axis network video products
	// advertise.
	ServiceType = "_axis-video._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the default HTTP port
	DefaultPort = 80
)

var (
	// serialPattern matches a 12 hex digit Axis serial number
	serialPattern = regexp.MustCompile(`^[0-9A-Fa-f]{12}$`)

	// hostnamePattern matches default Axis hostnames (e.g., "axis-accc8e000001.local.")
	hostnamePattern = regexp.MustCompile(`^axis-([0-9a-fA-F]{12})\.local\.?$`)
)

// Scanner handles mDNS device discovery
type Scanner struct {
	// Timeout is the maximum time to wait for device discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan browses for Axis devices until the timeout expires or ctx is
// cancelled. Devices advertising more than once are reported once, keyed by
// serial number.
func (s *Scanner) Scan(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu      sync.Mutex
		devices []*Device
		seen    = make(map[string]bool)
	)

	go func() {
		for entry := range entries {
			device := parseServiceEntry(entry)
			if device == nil {
				logging.Debug("Ignoring mDNS entry", zap.String("instance", entry.Instance))
				continue
			}
			mu.Lock()
			if !seen[device.Serial] {
				seen[device.Serial] = true
				devices = append(devices, device)
			}
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	result := append([]*Device(nil), devices...)
	logging.Info("mDNS scan complete", zap.Int("devices", len(result)))
	return result, nil
}

// Find waits for the device with serial. It returns as soon as the device
// answers, or an error when the timeout expires first.
func (s *Scanner) Find(ctx context.Context, serial string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan *Device, 1)

	go func() {
		for entry := range entries {
			device := parseServiceEntry(entry)
			if device != nil && strings.EqualFold(device.Serial, serial) {
				select {
				case found <- device:
				default:
				}
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case device := <-found:
		return device, nil
	case <-ctx.Done():
		// The device may have been found just as the context ended
		select {
		case device := <-found:
			return device, nil
		default:
		}
		return nil, fmt.Errorf("device with serial %s not found within %s", serial, s.Timeout)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry has no usable address or serial number.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	model, serial := splitInstance(entry.Instance)
	if mac := metadata["macaddress"]; serialPattern.MatchString(mac) {
		serial = mac
	}
	if serial == "" {
		if m := hostnamePattern.FindStringSubmatch(entry.HostName); m != nil {
			serial = m[1]
		}
	}
	if serial == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Device{
		Instance:     entry.Instance,
		Model:        model,
		Serial:       strings.ToUpper(serial),
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// splitInstance splits "AXIS M1065-L - ACCC8E000001" into its model and
// serial. Renamed devices keep the whole instance as model.
func splitInstance(instance string) (model, serial string) {
	instance = strings.ReplaceAll(instance, `\ `, " ")
	if i := strings.LastIndex(instance, " - "); i >= 0 {
		if candidate := strings.TrimSpace(instance[i+3:]); serialPattern.MatchString(candidate) {
			return strings.TrimSpace(instance[:i]), candidate
		}
	}
	return strings.TrimSpace(instance), ""
}
