package vapixtest

import (
	"context"
	"fmt"

	"github.com/muurk/vapix/internal/vapix"
)

// RetrieveDeviceInfo reads the identity of a live device from its parameter
// definitions. It fails when the device reports no serial number, since the
// serial names the fixture file.
func RetrieveDeviceInfo(ctx context.Context, c *vapix.Client) (DeviceInfo, error) {
	defs, err := c.Parameters().ListDefinitions(ctx, "root.Properties.Firmware", "root.Properties.System")
	if err != nil {
		return DeviceInfo{}, err
	}

	info := DeviceInfo{
		Model:           defs.Model,
		FirmwareVersion: defs.FirmwareVersion,
	}

	value := func(path string) string {
		if p := defs.Lookup(path); p != nil && p.HasValue {
			return p.Value
		}
		return ""
	}
	if info.FirmwareVersion == "" {
		info.FirmwareVersion = value("root.Properties.Firmware.Version")
	}
	info.FirmwareBuildDate = value("root.Properties.Firmware.BuildDate")
	info.Architecture = value("root.Properties.System.Architecture")
	info.SOC = value("root.Properties.System.Soc")
	info.HardwareID = value("root.Properties.System.HardwareID")
	info.SerialNumber = value("root.Properties.System.SerialNumber")

	if info.SerialNumber == "" {
		return DeviceInfo{}, fmt.Errorf("device at %s reports no serial number", c.Host())
	}
	if info.FirmwareVersion == "" {
		return DeviceInfo{}, fmt.Errorf("device at %s reports no firmware version", c.Host())
	}
	return info, nil
}
