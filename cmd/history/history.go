// Package history provides the history command for reading the audit log.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/unmerge/internal/audit"
	"github.com/klytics/unmerge/internal/config"
)

// NewCommand returns the history subcommand.
func NewCommand() *cobra.Command {
	var (
		since  time.Duration
		file   string
		failed bool
		clear  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previously processed workbooks",
		Long: `Lists entries from the audit log. Logging is off by default:

  unmerge config set audit.enabled true`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}

			if clear {
				if err := audit.Clear(cfg.Audit.Path); err != nil {
					return fmt.Errorf("could not clear %s: %w", cfg.Audit.Path, err)
				}
				fmt.Println("History cleared")
				return nil
			}

			entries, err := audit.ReadEntries(cfg.Audit.Path)
			if err != nil {
				return fmt.Errorf("could not read %s: %w", cfg.Audit.Path, err)
			}

			var from time.Time
			if since > 0 {
				from = time.Now().Add(-since)
			}
			entries = audit.FilterEntries(entries, from, file, failed)

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				color.New(color.FgHiBlack).Printf("No history in %s\n", cfg.Audit.Path)
				return nil
			}

			ok := color.New(color.FgGreen)
			bad := color.New(color.FgRed)
			for _, e := range entries {
				ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
				if e.ExitCode == 0 {
					ok.Printf("%s  ok   ", ts)
					fmt.Printf("%s → %s (%d rows, %d merges, %dms)\n", e.InputFile, e.OutputFile, e.Rows, e.Merges, e.DurationMs)
				} else {
					bad.Printf("%s  fail ", ts)
					fmt.Printf("%s: %s\n", e.InputFile, e.Error)
				}
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&since, "since", 0, "Only show entries newer than this (e.g. 24h)")
	cmd.Flags().StringVar(&file, "file", "", "Only show entries whose input path contains this text")
	cmd.Flags().BoolVar(&failed, "failed", false, "Only show failed runs")
	cmd.Flags().BoolVar(&clear, "clear", false, "Truncate the audit log")

	return cmd
}
