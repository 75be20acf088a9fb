package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/vapix/internal/arch"
	"github.com/muurk/vapix/internal/ui"
)

func newSniffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sniff EXECUTABLE...",
		Short: "Identify the architecture an executable was built for",
		Long: `Read the ELF header of each executable and report the device
architecture it targets, with the SoCs whose firmware runs it. No device is
contacted.`,
		Example: `  vapixctl sniff ./build/myapp`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := ui.NewPrinter(cmd.OutOrStdout())
			table := ui.NewTable("FILE", "ARCHITECTURE", "SOCS")

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				a, ok := arch.Sniff(data)
				if !ok {
					table.AddRow(filepath.Base(path), "unrecognized", "")
					continue
				}
				table.AddRow(filepath.Base(path), a.DisplayName(), strings.Join(socsFor(a), ", "))
			}

			p.PrintTable(table)
			return nil
		},
	}
}

// socsFor lists the SoCs whose firmware is built for a.
func socsFor(a arch.Architecture) []string {
	var names []string
	for _, s := range arch.AllSOCs() {
		if s.Architecture() == a {
			names = append(names, s.DisplayName())
		}
	}
	return names
}
