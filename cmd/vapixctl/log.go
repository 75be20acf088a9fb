package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/vapix/internal/ui"
	"github.com/muurk/vapix/internal/vapix"
)

func newLogCmd(a *app) *cobra.Command {
	var (
		level  string
		tail   int
		source string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the device's system log",
		Long: `Fetch and parse the device's system log, oldest entry first.

--level keeps entries at that severity or worse: emerg, alert, crit, err,
warning, notice, info or debug. "message repeated" markers from older
firmware are always kept.`,
		Example: `  vapixctl log --device lobby --level warning
  vapixctl log --device lobby --tail 20 --source kernel`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold := vapix.LevelDebug
			if level != "" {
				l, ok := vapix.ParseLogLevel(level)
				if !ok || l == vapix.LevelRepeated {
					return fmt.Errorf("unknown log level %q", level)
				}
				threshold = l
			}
			if tail < 0 {
				return errors.New("--tail must not be negative")
			}

			ctx := cmd.Context()
			p := ui.NewPrinter(cmd.OutOrStdout())
			t, err := a.open(p)
			if err != nil {
				return err
			}

			log, err := t.Client.SystemLog().Entries(ctx)
			if vapix.IsUnsupported(err) {
				p.PrintWarning("System log not available", deviceField(t))
				return nil
			}
			if err != nil {
				return err
			}

			entries := filterLog(log.Entries, threshold, source)
			if tail > 0 && len(entries) > tail {
				entries = entries[len(entries)-tail:]
			}

			p.PrintHeader("System Log", "vapixctl log", deviceField(t),
				ui.Field{Key: "Entries", Value: strconv.Itoa(len(entries)) + " of " + strconv.Itoa(len(log.Entries))})
			if len(entries) == 0 {
				p.Println("  No matching entries.")
			} else {
				table := ui.NewTable("TIME", "LEVEL", "SOURCE", "MESSAGE")
				for _, e := range entries {
					table.AddRow(logTime(e), e.Level.String(), e.Source.String(), e.Message)
				}
				p.PrintTable(table)
			}

			if n := len(log.Unparsed); n > 0 {
				p.PrintWarning(fmt.Sprintf("%d log lines could not be parsed", n))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Show entries at this severity or worse")
	cmd.Flags().IntVar(&tail, "tail", 0, "Show only the newest N matching entries")
	cmd.Flags().StringVar(&source, "source", "", "Show only entries from this program")
	return cmd
}

func filterLog(entries []vapix.LogEntry, threshold vapix.LogLevel, source string) []vapix.LogEntry {
	var out []vapix.LogEntry
	for _, e := range entries {
		if e.Level != vapix.LevelRepeated && e.Level > threshold {
			continue
		}
		if source != "" && e.Source.Name != source {
			continue
		}
		out = append(out, e)
	}
	return out
}

func logTime(e vapix.LogEntry) string {
	if e.Zoned {
		return e.Time.Format("2006-01-02 15:04:05 -0700")
	}
	return e.Time.Format("2006-01-02 15:04:05")
}
