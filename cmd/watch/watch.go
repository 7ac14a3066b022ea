// Package watch provides the watch command for processing workbooks as they
// land in a directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/klytics/unmerge/internal/audit"
	"github.com/klytics/unmerge/internal/config"
	"github.com/klytics/unmerge/internal/output"
	"github.com/klytics/unmerge/internal/processor"
	"github.com/klytics/unmerge/internal/progress"
	w "github.com/klytics/unmerge/internal/watch"
)

// NewCommand creates the "watch" command.
func NewCommand() *cobra.Command {
	var (
		recursive bool
		debounce  int
		outDir    string
	)

	cmd := &cobra.Command{
		Use:   "watch <directory> [directory...]",
		Short: "Process workbooks as they are created or modified",
		Long: `Watches directories and resolves merged cells in every workbook that is
created or modified there. Outputs are written next to the input (or to
--out-dir) and are never picked up again.

Example:
  unmerge watch ./incoming --out-dir ./flat`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")

			cfg, err := config.LoadWithFlags(cmd.Flags())
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			if !cmd.Flags().Changed("recursive") {
				recursive = cfg.Watch.Recursive
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = cfg.Watch.DebounceMs
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return fmt.Errorf("could not create output directory %s: %w", outDir, err)
				}
			}

			auditLog := audit.NewLogger(cfg.Audit.Path, cfg.Audit.Enabled)
			template := processor.Options{
				Column:    cfg.Column,
				Suffix:    cfg.Suffix,
				KeepStyle: cfg.Output.KeepStyle,
			}

			handler := func(path string) error {
				opts := template
				opts.Input = path
				if outDir != "" {
					opts.Output = filepath.Join(outDir, filepath.Base(processor.OutputPath(path, opts.Suffix)))
				}
				report, err := processor.Process(opts)

				entry := audit.Entry{
					Command:   "watch",
					Column:    opts.Column,
					InputFile: path,
					ExitCode:  output.ExitCode(err),
				}
				if err != nil {
					entry.Error = err.Error()
				} else {
					entry.OutputFile = report.Output
					entry.Rows = report.Rows
					entry.Merges = report.Merges
					entry.DurationMs = report.DurationMs
				}
				auditLog.Log(context.Background(), entry)
				return err
			}

			watcher, err := w.New(w.Config{
				Directories: args,
				Recursive:   recursive,
				Debounce:    time.Duration(debounce) * time.Millisecond,
				Suffix:      cfg.Suffix,
			}, handler)
			if err != nil {
				return err
			}
			watcher.Logger = progress.NewLogger("watch", verbose)

			fmt.Printf("Watching %d directory(ies) for workbooks (column %q)\n", len(args), cfg.Column)
			fmt.Println("Press Ctrl+C to stop")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return watcher.Start(ctx)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Watch directories recursively")
	cmd.Flags().IntVar(&debounce, "debounce", 500, "Debounce interval in milliseconds")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for output files (default: next to each input)")

	return cmd
}
