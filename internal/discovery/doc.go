// Package discovery finds Axis devices on the local network over mDNS.
//
// Axis network video products advertise the "_axis-video._tcp" service. The
// instance name is normally "<model> - <serial>" and the TXT record carries
// "macaddress=<serial>", so a device can be identified before any HTTP
// request is made.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 3 * time.Second
//	devices, err := scanner.Scan(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, device := range devices {
//	    fmt.Printf("%s at %s\n", device.Serial, device.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
