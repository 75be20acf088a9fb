package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/vapixtest"
)

func newDevicesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Manage saved devices",
		Long: `Manage the devices saved in the config file.

A saved device can be named with --device instead of its address. Only the
URL, username and what the device last reported about itself are saved;
passwords never are.`,
	}
	cmd.AddCommand(newDevicesListCmd(a), newDevicesAddCmd(a), newDevicesRemoveCmd(a), newDevicesRefreshCmd(a))
	return cmd
}

func newDevicesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved devices",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.loadRegistry()
			if err != nil {
				return err
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			if len(reg.Devices) == 0 {
				p.Println("No saved devices. Add one with 'vapixctl devices add NAME URL'.")
				return nil
			}

			table := ui.NewTable("NAME", "URL", "USER", "MODEL", "SERIAL", "FIRMWARE", "LAST SEEN")
			for _, name := range reg.Names() {
				d := reg.GetDevice(name)
				lastSeen := ""
				if !d.LastSeen.IsZero() {
					lastSeen = d.LastSeen.Local().Format("2006-01-02 15:04")
				}
				table.AddRow(name, d.URL, reg.UsernameFor(d), d.Model, d.SerialNumber, d.FirmwareVersion, lastSeen)
			}
			p.PrintTable(table)
			return nil
		},
	}
}

func newDevicesAddCmd(a *app) *cobra.Command {
	var lookup bool

	cmd := &cobra.Command{
		Use:   "add NAME URL",
		Short: "Save a device under a name",
		Example: `  vapixctl devices add lobby http://192.168.0.90
  vapixctl devices add yard https://operator@yard.example.net --identify`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.loadRegistry()
			if err != nil {
				return err
			}

			name := args[0]
			device, err := reg.AddDevice(name, args[1])
			if err != nil {
				return err
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			if lookup {
				if err := a.identify(cmd, p, name); err != nil {
					return err
				}
			}

			if err := a.saveRegistry(); err != nil {
				return err
			}
			p.PrintSuccess("Device saved",
				ui.Field{Key: "Name", Value: name},
				ui.Field{Key: "URL", Value: device.URL},
				ui.Field{Key: "Model", Value: device.Model},
				ui.Field{Key: "Serial", Value: device.SerialNumber},
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&lookup, "identify", false, "Contact the device and save its identity")
	return cmd
}

func newDevicesRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Forget a saved device",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.loadRegistry()
			if err != nil {
				return err
			}
			if !reg.RemoveDevice(args[0]) {
				return fmt.Errorf("no saved device named %q", args[0])
			}
			if err := a.saveRegistry(); err != nil {
				return err
			}
			ui.NewPrinter(cmd.OutOrStdout()).Println("Removed " + args[0])
			return nil
		},
	}
}

func newDevicesRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh NAME",
		Short: "Update a saved device's model, serial and firmware",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.loadRegistry()
			if err != nil {
				return err
			}
			if reg.GetDevice(args[0]) == nil {
				return fmt.Errorf("no saved device named %q", args[0])
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			if err := a.identify(cmd, p, args[0]); err != nil {
				return err
			}
			if err := a.saveRegistry(); err != nil {
				return err
			}

			d := reg.GetDevice(args[0])
			p.PrintSuccess("Device refreshed",
				ui.Field{Key: "Name", Value: args[0]},
				ui.Field{Key: "Model", Value: d.Model},
				ui.Field{Key: "Serial", Value: d.SerialNumber},
				ui.Field{Key: "Firmware", Value: d.FirmwareVersion},
				ui.Field{Key: "Architecture", Value: d.Architecture},
			)
			return nil
		},
	}
}

// identify reads the saved device's identity and records it in the
// registry. With --fixture the fixture's device answers instead.
func (a *app) identify(cmd *cobra.Command, p *ui.Printer, name string) error {
	device := a.device
	a.device = name
	defer func() { a.device = device }()

	t, err := a.open(p)
	if err != nil {
		return err
	}

	info, err := vapixtest.RetrieveDeviceInfo(cmd.Context(), t.Client)
	if err != nil {
		return err
	}
	a.registry.UpdateIdentity(name, info.SerialNumber, info.Model, info.FirmwareVersion, info.Architecture)
	return nil
}
