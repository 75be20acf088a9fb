package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/muurk/vapix/internal/ui"
)

func newInfoCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show device identity",
		Long: `Show the product, serial number and firmware of a device.

Uses the basic device info API when the device advertises it, and the
Brand parameter group otherwise.`,
		Example: `  vapixctl info --device lobby
  vapixctl info --device lobby --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := ui.NewPrinter(cmd.OutOrStdout())
			t, err := a.open(p)
			if err != nil {
				return err
			}

			services, err := t.Client.Services(ctx)
			if err != nil {
				return err
			}

			if services.BasicDeviceInfo == nil {
				params, err := t.Client.Parameters().List(ctx, "root.Brand")
				if err != nil {
					return err
				}
				p.PrintHeader("Device Information", "vapixctl info", deviceField(t),
					ui.Field{Key: "Source", Value: "param.cgi root.Brand"})
				table := ui.NewTable("PARAMETER", "VALUE")
				for _, key := range params.Keys() {
					table.AddRow(key, params[key])
				}
				p.PrintTable(table)
				return nil
			}

			if all {
				props, err := services.BasicDeviceInfo.AllProperties(ctx)
				if err != nil {
					return err
				}
				p.PrintHeader("Device Information", "vapixctl info --all", deviceField(t))
				keys := make([]string, 0, len(props))
				for k := range props {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				table := ui.NewTable("PROPERTY", "VALUE")
				for _, k := range keys {
					table.AddRow(k, props[k])
				}
				p.PrintTable(table)
				return nil
			}

			props, err := services.BasicDeviceInfo.Properties(ctx)
			if err != nil {
				return err
			}
			p.PrintSuccess(props.ProdFullName,
				deviceField(t),
				ui.Field{Key: "Serial number", Value: props.SerialNumber},
				ui.Field{Key: "Product number", Value: props.ProdNbr},
				ui.Field{Key: "Firmware", Value: props.Version},
				ui.Field{Key: "Build date", Value: props.BuildDate},
				ui.Field{Key: "Architecture", Value: props.Architecture},
				ui.Field{Key: "SoC", Value: props.Soc},
				ui.Field{Key: "Hardware ID", Value: props.HardwareID},
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every property the device reports")
	return cmd
}
