package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/urls"
)

func newAppsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "Show application platform support",
		Long: `Show whether a device can run installable applications, and the
firmware, architecture and SoC applications must be built for.

Building packages: ` + urls.ACAPDocs,
		Example: `  vapixctl apps --device lobby
  vapixctl apps check --device lobby ./build/myapp
  vapixctl apps upload --device lobby ./myapp_1_0_0_armv7hf.eap`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ui.NewPrinter(cmd.OutOrStdout())
			t, err := a.open(p)
			if err != nil {
				return err
			}

			apps, err := t.Client.Applications(cmd.Context())
			if err != nil {
				return err
			}

			fields := []ui.Field{
				deviceField(t),
				{Key: "Embedded development", Value: apps.EmbeddedDevelopmentVersion},
				{Key: "Firmware", Value: apps.FirmwareVersion},
			}
			if apps.Architecture != "" {
				fields = append(fields, ui.Field{Key: "Architecture", Value: apps.Architecture.DisplayName()})
			}
			if apps.SOC != "" {
				fields = append(fields, ui.Field{Key: "SoC", Value: apps.SOC.DisplayName()})
			}
			p.PrintSuccess("Applications supported", fields...)
			return nil
		},
	}

	cmd.AddCommand(newAppsCheckCmd(a), newAppsUploadCmd(a))
	return cmd
}

func newAppsCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check EXECUTABLE",
		Short: "Check that an executable matches the device architecture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			executable, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			t, err := a.open(p)
			if err != nil {
				return err
			}

			apps, err := t.Client.Applications(cmd.Context())
			if err != nil {
				return err
			}
			if err := apps.CheckExecutable(executable); err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(args[0]), err)
			}

			p.PrintSuccess("Executable matches device",
				deviceField(t),
				ui.Field{Key: "File", Value: filepath.Base(args[0])},
				ui.Field{Key: "Architecture", Value: apps.Architecture.DisplayName()},
			)
			return nil
		},
	}
}

func newAppsUploadCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "upload PACKAGE.eap",
		Short: "Install an application package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			p := ui.NewPrinter(cmd.OutOrStdout())
			t, err := a.open(p)
			if err != nil {
				return err
			}

			apps, err := t.Client.Applications(ctx)
			if err != nil {
				return err
			}

			if !yes {
				changes := []string{
					fmt.Sprintf("Install %s (%s)", filepath.Base(args[0]), humanBytes(uint64(len(pkg)))),
					"Embedded development " + apps.EmbeddedDevelopmentVersion,
				}
				if !p.Confirm(cmd.InOrStdin(), "Upload application to "+t.Name, changes) {
					return nil
				}
			}

			if err := apps.Upload(ctx, pkg); err != nil {
				return err
			}
			p.PrintSuccess("Application uploaded", deviceField(t), ui.Field{Key: "Package", Value: filepath.Base(args[0])})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
