package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/vapix"
)

func newDisksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "disks",
		Short:   "List SD cards, drives and network shares",
		Example: `  vapixctl disks --device lobby`,
		Args:    cobra.NoArgs,
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
			disks := services.DiskManagement
			if disks == nil {
				// Older firmware serves the API without advertising it
				disks = t.Client.DiskManagement()
			}

			list, err := disks.List(ctx)
			if vapix.IsUnsupported(err) {
				p.PrintWarning("Disk management not supported", deviceField(t))
				return nil
			}
			if err != nil {
				return err
			}

			p.PrintHeader("Disks", "vapixctl disks", deviceField(t))
			if len(list) == 0 {
				p.Println("  No disks.")
				return nil
			}

			table := ui.NewTable("DISK", "GROUP", "FILESYSTEM", "STATUS", "SIZE", "USED", "FLAGS")
			for _, d := range list {
				table.AddRow(d.DiskID, d.Group, string(d.Filesystem), d.Status,
					humanBytes(d.TotalSize), usage(d), diskFlags(d))
			}
			p.PrintTable(table)
			return nil
		},
	}
}

func usage(d vapix.DiskInfo) string {
	if d.TotalSize == 0 {
		return ""
	}
	return fmt.Sprintf("%s (%d%%)", humanBytes(d.UsedSize()), d.UsedSize()*100/d.TotalSize)
}

func diskFlags(d vapix.DiskInfo) string {
	var flags string
	add := func(set vapix.Flag, name string) {
		if !set {
			return
		}
		if flags != "" {
			flags += ","
		}
		flags += name
	}
	add(d.Locked, "locked")
	add(d.Full, "full")
	add(d.ReadOnly, "readonly")
	add(d.DiskEncrypted, "encrypted")
	return flags
}

// humanBytes formats a byte count with binary prefixes.
func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
