package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/vapix/internal/transport"
	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/vapix"
	"github.com/muurk/vapix/internal/vapixtest"
)

// captureStep is one request sequence recorded by capture.
type captureStep struct {
	name string
	run  func(ctx context.Context, c *vapix.Client) error
}

// captureSteps exercises every API the offline tests replay.
var captureSteps = []captureStep{
	{"API discovery", func(ctx context.Context, c *vapix.Client) error {
		_, err := c.Services(ctx)
		return err
	}},
	{"Brand parameters", func(ctx context.Context, c *vapix.Client) error {
		_, err := c.Parameters().List(ctx, "root.Brand")
		return err
	}},
	{"Basic device info", func(ctx context.Context, c *vapix.Client) error {
		services, err := c.Services(ctx)
		if err != nil {
			return err
		}
		if services.BasicDeviceInfo == nil {
			return vapix.ErrUnsupportedFeature
		}
		_, err = services.BasicDeviceInfo.Properties(ctx)
		return err
	}},
	{"Disks", func(ctx context.Context, c *vapix.Client) error {
		_, err := c.DiskManagement().List(ctx)
		return err
	}},
	{"Applications", func(ctx context.Context, c *vapix.Client) error {
		_, err := c.Applications(ctx)
		return err
	}},
	{"System log", func(ctx context.Context, c *vapix.Client) error {
		_, err := c.SystemLog().Entries(ctx)
		return err
	}},
	{"Recordings", func(ctx context.Context, c *vapix.Client) error {
		rec, err := c.Recordings(ctx)
		if err != nil {
			return err
		}
		_, err = rec.List(ctx, vapix.ListRecordingsOptions{})
		return err
	}},
}

func newCaptureCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Record a device's answers as a test fixture",
		Long: `Send the standard set of requests to a device and save every
exchange as a YAML fixture named after the device's serial number and
firmware version. Tests replay these fixtures without a device.

An existing fixture is never overwritten; delete it to record again.`,
		Example: `  VAPIX_PASSWORD=secret vapixctl capture --device lobby --dir internal/vapix/testdata/fixtures`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := ui.NewPrinter(cmd.OutOrStdout())

			var recorder *vapixtest.Recorder
			t, err := a.openWith(p, func(next transport.Transport) transport.Transport {
				recorder = vapixtest.NewRecorder(next)
				return recorder
			})
			if err != nil {
				return err
			}

			info, err := vapixtest.RetrieveDeviceInfo(ctx, t.Client)
			if err != nil {
				return err
			}

			p.PrintHeader("Fixture Capture", "vapixctl capture", deviceField(t),
				ui.Field{Key: "Model", Value: info.Model},
				ui.Field{Key: "Firmware", Value: info.FirmwareVersion},
			)

			table := ui.NewTable("STEP", "RESULT")
			for _, step := range captureSteps {
				err := step.run(ctx, t.Client)
				switch {
				case err == nil:
					table.AddRow(step.name, ui.SuccessMarker+" recorded")
				case errors.Is(err, vapix.ErrUnsupportedFeature):
					table.AddRow(step.name, ui.SkippedMarker+" not supported (recorded)")
				case ctx.Err() != nil:
					return ctx.Err()
				default:
					table.AddRow(step.name, ui.FailureMarker+" "+vapix.GetShortErrorMessage(err))
				}
			}
			p.PrintTable(table)
			p.Newline()

			path, err := recorder.Flush(dir, info)
			if err != nil {
				return fmt.Errorf("failed to save fixture: %w", err)
			}
			if path == "" {
				p.PrintWarning("Fixture already exists, not overwritten",
					ui.Field{Key: "File", Value: info.FileName()},
				)
				return nil
			}

			p.PrintSuccess("Fixture recorded",
				ui.Field{Key: "File", Value: path},
				ui.Field{Key: "Exchanges", Value: strconv.Itoa(len(recorder.Exchanges()))},
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", vapixtest.DefaultFixtureDir, "Directory to write the fixture to")
	return cmd
}
