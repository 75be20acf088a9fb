package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/vapix"
)

func newRecordingsCmd(a *app) *cobra.Command {
	var (
		opts        vapix.ListRecordingsOptions
		oldestFirst bool
	)

	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "List recordings stored on the device",
		Example: `  vapixctl recordings --device lobby
  vapixctl recordings --device lobby --disk SD_DISK --max 10 --oldest-first`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.MaxResults < 0 {
				return errors.New("--max must not be negative")
			}
			if oldestFirst {
				opts.Sort = vapix.EarliestFirst
			}

			ctx := cmd.Context()
			p := ui.NewPrinter(cmd.OutOrStdout())
			t, err := a.open(p)
			if err != nil {
				return err
			}

			rec, err := t.Client.Recordings(ctx)
			if vapix.IsUnsupported(err) {
				p.PrintWarning("Recordings not supported", deviceField(t))
				return nil
			}
			if err != nil {
				return err
			}

			list, err := rec.List(ctx, opts)
			if err != nil {
				return err
			}

			p.PrintHeader("Recordings", "vapixctl recordings", deviceField(t),
				ui.Field{Key: "Showing", Value: strconv.Itoa(len(list.Recordings)) + " of " + strconv.Itoa(list.Total)},
				ui.Field{Key: "Capabilities", Value: recordingCapabilities(rec)})
			if len(list.Recordings) == 0 {
				p.Println("  No recordings.")
				return nil
			}

			now := time.Now()
			table := ui.NewTable("ID", "DISK", "TYPE", "STARTED", "DURATION", "VIDEO", "STATUS")
			for _, r := range list.Recordings {
				table.AddRow(r.RecordingID, r.DiskID, r.Type,
					r.Start.Local().Format("2006-01-02 15:04:05"),
					r.Duration(now).Round(time.Second).String(),
					videoSummary(r.Video), r.Status)
			}
			p.PrintTable(table)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.MaxResults, "max", 0, "Return at most N recordings")
	cmd.Flags().StringVar(&opts.DiskID, "disk", "", "Only recordings on this disk")
	cmd.Flags().StringVar(&opts.EventID, "event", "", "Only recordings made by this event")
	cmd.Flags().BoolVar(&oldestFirst, "oldest-first", false, "Sort by start time ascending")
	return cmd
}

func recordingCapabilities(r *vapix.Recordings) string {
	var caps string
	add := func(set bool, name string) {
		if !set {
			return
		}
		if caps != "" {
			caps += ", "
		}
		caps += name
	}
	add(r.ContinuousRecording, "continuous")
	add(r.PlaybackOverRTSP, "RTSP playback")
	add(r.Exporting, "export")
	if caps == "" {
		return "none"
	}
	return caps
}

func videoSummary(v *vapix.RecordingVideo) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%dx%d @ %g fps", v.Width, v.Height, v.FrameRate.FPS())
}
