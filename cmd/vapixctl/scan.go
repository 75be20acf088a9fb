package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/vapix/internal/discovery"
	"github.com/muurk/vapix/internal/transport"
	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/vapix"
)

// identifyLimit bounds concurrent device lookups during a scan.
const identifyLimit = 4

func newScanCmd(a *app) *cobra.Command {
	var (
		timeout  time.Duration
		identify bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find Axis devices on the local network",
		Long: `Find Axis devices using mDNS/DNS-SD discovery.

Axis devices advertise the _axis-video._tcp service with their model and
serial number. With --identify each device is also asked for its firmware
version and the number of APIs it advertises.`,
		Example: `  # Listen for 5 seconds (default)
  vapixctl scan

  # Longer scan, then query every device found
  VAPIX_PASSWORD=secret vapixctl scan --scan-timeout 15s --identify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.loadRegistry()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("scan-timeout") && reg.Preferences != nil && reg.Preferences.DiscoverTimeout > 0 {
				timeout = time.Duration(reg.Preferences.DiscoverTimeout) * time.Second
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			p.PrintHeader("Device Scan", "vapixctl scan",
				ui.Field{Key: "Service", Value: discovery.ServiceType},
				ui.Field{Key: "Timeout", Value: timeout.String()},
			)

			scanner := discovery.NewScanner()
			scanner.Timeout = timeout
			devices, err := scanner.Scan(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if len(devices) == 0 {
				r := ui.NewWarningResult("No devices found")
				r.Width = p.Width()
				r.Troubleshooting = []string{
					"Ensure the devices are powered on and on this network segment",
					"Check that multicast (UDP port 5353) is not blocked",
					"Try increasing --scan-timeout",
					"Use --device with an address if discovery keeps failing",
				}
				p.Println(r.Render())
				return nil
			}
			sort.Slice(devices, func(i, j int) bool { return devices[i].Serial < devices[j].Serial })

			var identities []scanIdentity
			if identify {
				username := a.user
				if username == "" {
					username = reg.UsernameFor(nil)
				}
				password, err := a.password(p, nil, username)
				if err != nil {
					return err
				}
				creds := vapix.Credentials{Username: username, Password: password}
				identities = identifyAll(cmd.Context(), a.httpTransport(reg), creds, devices)
			}

			table := ui.NewTable("SERIAL", "MODEL", "ADDRESS", "SAVED AS")
			if identify {
				table = ui.NewTable("SERIAL", "MODEL", "ADDRESS", "SAVED AS", "FIRMWARE", "APIS")
			}
			for i, d := range devices {
				saved, _ := reg.FindBySerial(d.Serial)
				row := []string{d.Serial, d.Model, d.BaseURL(), saved}
				if identify {
					row = append(row, identities[i].cells()...)
				}
				table.AddRow(row...)
			}
			p.PrintTable(table)

			p.Newline()
			p.Println(fmt.Sprintf("Found %d device(s). Save one with 'vapixctl devices add NAME URL'.", len(devices)))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "scan-timeout", discovery.DefaultScanTimeout, "How long to listen for advertisements")
	cmd.Flags().BoolVar(&identify, "identify", false, "Query each device for firmware version and API count")
	return cmd
}

type scanIdentity struct {
	firmware string
	apis     string
	err      error
}

func (r scanIdentity) cells() []string {
	if r.err != nil {
		return []string{vapix.GetShortErrorMessage(r.err), ""}
	}
	return []string{r.firmware, r.apis}
}

// identifyAll queries every device concurrently. Failures are kept per device.
func identifyAll(ctx context.Context, t transport.Transport, creds vapix.Credentials, devices []*discovery.Device) []scanIdentity {
	results := make([]scanIdentity, len(devices))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(identifyLimit)
	for i, d := range devices {
		i, d := i, d
		g.Go(func() error {
			results[i] = identifyDevice(ctx, t, creds, d.BaseURL())
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func identifyDevice(ctx context.Context, t transport.Transport, creds vapix.Credentials, rawURL string) scanIdentity {
	c, err := vapix.NewClientWithCredentials(t, rawURL, creds)
	if err != nil {
		return scanIdentity{err: err}
	}

	params, err := c.Parameters().List(ctx, "Properties.Firmware.Version")
	if err != nil {
		return scanIdentity{err: err}
	}
	firmware, _ := params.Lookup("Properties.Firmware.Version")

	services, err := c.Services(ctx)
	if err != nil {
		return scanIdentity{firmware: firmware, err: err}
	}
	return scanIdentity{firmware: firmware, apis: strconv.Itoa(len(services.APIs))}
}
