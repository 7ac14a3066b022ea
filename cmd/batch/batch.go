// Package batch provides the batch command for processing many workbooks.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/unmerge/internal/audit"
	"github.com/klytics/unmerge/internal/config"
	"github.com/klytics/unmerge/internal/formats/xlsx"
	"github.com/klytics/unmerge/internal/fs"
	"github.com/klytics/unmerge/internal/output"
	"github.com/klytics/unmerge/internal/processor"
	"github.com/klytics/unmerge/internal/progress"
)

// NewCommand returns the batch subcommand.
func NewCommand() *cobra.Command {
	var (
		outDir      string
		concurrency int
		dryRun      bool
		recursive   bool
		newerThan   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "batch <glob-pattern|directory> [...]",
		Short: "Resolve merged cells in every workbook matching a pattern",
		Long: `Processes every workbook matching the given glob patterns. A directory
argument is scanned for workbooks (add --recursive to descend into
subdirectories, --newer-than to skip files not modified recently).

Each file is handled independently: a failure is reported and the batch
continues with the next file. Files that already carry the output suffix
are skipped. The command exits non-zero if any file failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			cfg, err := config.LoadWithFlags(cmd.Flags())
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}

			scan := fs.ScanOptions{Recursive: recursive, Suffix: cfg.Suffix}
			if newerThan > 0 {
				scan.ModAfter = time.Now().Add(-newerThan)
			}
			files, err := expand(args, scan)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no workbooks matched %v", args)
			}

			if outDir != "" {
				if err := os.MkdirAll(outDir, 0755); err != nil {
					return fmt.Errorf("could not create output directory %s: %w", outDir, err)
				}
			}

			bar := progress.New("Processing", len(files))
			auditLog := audit.NewLogger(cfg.Audit.Path, cfg.Audit.Enabled)

			results := processor.Batch(context.Background(), files, processor.BatchOptions{
				Template: processor.Options{
					Column:    cfg.Column,
					Suffix:    cfg.Suffix,
					KeepStyle: cfg.Output.KeepStyle,
					DryRun:    dryRun,
				},
				OutDir:      outDir,
				Concurrency: concurrency,
				OnDone: func(_ int, r processor.FileResult) {
					bar.Increment(filepath.Base(r.File))
					entry := audit.Entry{
						Command:   "batch",
						Column:    cfg.Column,
						InputFile: r.File,
						ExitCode:  output.ExitCode(r.Err),
						Error:     r.Error,
					}
					if r.Report != nil {
						entry.OutputFile = r.Report.Output
						entry.Rows = r.Report.Rows
						entry.Merges = r.Report.Merges
						entry.DurationMs = r.Report.DurationMs
					}
					auditLog.Log(context.Background(), entry)
				},
			})

			failed := processor.Failed(results)
			bar.Finish(fmt.Sprintf("%d files", len(files)))

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				printResults(results)
				fmt.Printf("\nProcessed %d files. %d succeeded, %d failed.\n", len(files), len(files)-failed, failed)
			}

			if failed == 0 {
				return nil
			}
			var errs []error
			for _, r := range results {
				if r.Err != nil {
					errs = append(errs, r.Err)
				}
			}
			return fmt.Errorf("%d of %d files failed: %w", failed, len(files), errors.Join(errs...))
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for output files (default: next to each input)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of files processed in parallel")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve without writing files")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Descend into subdirectories of directory arguments")
	cmd.Flags().DurationVar(&newerThan, "newer-than", 0, "Only scan files modified within this duration (e.g. 24h)")

	return cmd
}

// expand resolves glob patterns and directories to a sorted, de-duplicated
// list of workbooks, leaving out files this tool produced.
func expand(patterns []string, scan fs.ScanOptions) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			res, err := fs.Scan(pattern, scan)
			if err != nil {
				return nil, err
			}
			for _, p := range res.Paths() {
				if !seen[p] {
					seen[p] = true
					files = append(files, p)
				}
			}
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || !xlsx.Supported(m) || processor.IsOutput(m, scan.Suffix) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func printResults(results []processor.FileResult) {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	for _, r := range results {
		if r.Status == "ok" {
			dest := r.Report.Output
			if dest == "" {
				dest = "(dry run)"
			}
			ok.Printf("  ok    ")
			fmt.Printf("%s → %s (%d rows, %d merges)\n", r.File, dest, r.Report.Rows, r.Report.Merges)
			continue
		}
		bad.Printf("  %-5s ", r.Status)
		fmt.Printf("%s: %s\n", r.File, r.Error)
	}
}
