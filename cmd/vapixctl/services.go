package main

import (
	"github.com/spf13/cobra"

	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/vapix"
)

func newServicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List the APIs a device advertises",
		Long: `List the APIs a device advertises through API discovery.

APIs this tool has a client for are marked. Firmware that predates API
discovery reports nothing; the legacy parameter API still works there.`,
		Example: `  vapixctl services --device lobby
  vapixctl services --device http://192.168.0.90`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ui.NewPrinter(cmd.OutOrStdout())
			t, err := a.open(p)
			if err != nil {
				return err
			}

			services, err := t.Client.Services(cmd.Context())
			if err != nil {
				return err
			}

			p.PrintHeader("Device Services", "vapixctl services", deviceField(t))

			if len(services.APIs) == 0 {
				p.PrintWarning("API discovery not available",
					ui.Field{Key: "Fallback", Value: "param.cgi (vapixctl params)"},
				)
				return nil
			}

			table := ui.NewTable("ID", "VERSION", "NAME", "CLIENT")
			for _, api := range services.APIs {
				table.AddRow(api.ID, api.Version, api.Name, typedClient(api.ID))
			}
			p.PrintTable(table)
			return nil
		},
	}
}

// typedClient names the command that uses an API, empty if none does.
func typedClient(id string) string {
	switch id {
	case vapix.APIParameters:
		return "params"
	case vapix.APIBasicDeviceInfo:
		return "info"
	case vapix.APIDiskManagement:
		return "disks"
	}
	return ""
}
