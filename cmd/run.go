package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/unmerge/internal/audit"
	"github.com/klytics/unmerge/internal/config"
	"github.com/klytics/unmerge/internal/formats/xlsx"
	"github.com/klytics/unmerge/internal/output"
	"github.com/klytics/unmerge/internal/processor"
	"github.com/klytics/unmerge/internal/progress"
	"github.com/klytics/unmerge/internal/unmerge"
)

type runJSONOutput struct {
	*processor.Report
	Filled  int                   `json:"filled"`
	Wide    []unmerge.MergeRegion `json:"wide,omitempty"`
	Preview []unmerge.Record      `json:"preview,omitempty"`
}

func runUnmerge(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		cmd.Usage()
		return unmerge.ErrUsage
	}

	cfg, err := config.LoadWithFlags(cmd.Flags())
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	format, err := output.ParseFormat(cfg.Preview.Format)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	input := args[0]
	if _, err := os.Stat(input); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", unmerge.ErrInputNotFound, input)
	}
	if !xlsx.Supported(input) {
		return fmt.Errorf("expected a workbook (%s), got %q", strings.Join(xlsx.Extensions, ", "), input)
	}

	opts := processor.Options{
		Input:     input,
		Column:    cfg.Column,
		Suffix:    cfg.Suffix,
		KeepStyle: cfg.Output.KeepStyle,
		DryRun:    dryRun,
	}
	if len(args) > 1 {
		opts.Output = args[1]
	}

	log := progress.NewLogger("unmerge", verbose)
	log.Debugf("column=%q suffix=%q keep_style=%v dry_run=%v", opts.Column, opts.Suffix, opts.KeepStyle, opts.DryRun)

	if !jsonOutput {
		fmt.Printf("Processing %s (column %q)\n", input, opts.Column)
	}

	spinner := progress.NewSpinner("Resolving merged cells...")
	spinner.Start()
	report, err := processor.Process(opts)
	if err != nil {
		spinner.Stop("")
	} else {
		spinner.Stop(fmt.Sprintf("Resolved %d merge(s)", report.Merges))
	}

	logRun(cfg, "unmerge", opts, report, err)
	if err != nil {
		return err
	}

	res := report.Result
	log.Debugf("applied %d merge(s), filled %d row(s)", len(res.Applied), res.Filled)
	for _, r := range res.Applied {
		log.Debugf("applied merge %s", r)
	}

	if jsonOutput {
		out := runJSONOutput{
			Report: report,
			Filled: res.Filled,
			Wide:   res.Wide,
		}
		if n := cfg.Preview.Rows; n > 0 {
			out.Preview = res.Rows[:min(n, len(res.Rows))]
		}
		return output.PrintJSON("unmerge", out)
	}

	warnWide(res)
	printSummary(report)

	if cfg.Preview.Rows > 0 && len(res.Rows) > 0 {
		n := min(cfg.Preview.Rows, len(res.Rows))
		color.New(color.Bold).Printf("\nPreview (first %d rows):\n", n)
		return output.NewWriter(os.Stdout, format).WritePreview(res.Rows, n)
	}
	return nil
}

func warnWide(res *unmerge.Result) {
	warn := color.New(color.FgYellow)
	for _, r := range res.Wide {
		warn.Fprintf(os.Stderr, "Warning: merge at %s spans several columns including %q; its value was not propagated\n",
			r, res.TargetColumn)
	}
}

func printSummary(report *processor.Report) {
	ok := color.New(color.FgGreen)
	dim := color.New(color.FgHiBlack)

	if report.Output != "" {
		ok.Printf("Wrote %s\n", report.Output)
	} else {
		dim.Println("Dry run: no file written")
	}
	fmt.Printf("  sheet:   %s\n", report.Sheet)
	fmt.Printf("  rows:    %d\n", report.Rows)
	fmt.Printf("  columns: %d\n", report.Columns)
	fmt.Printf("  merges:  %d applied, %d rows filled\n", report.Merges, report.Result.Filled)
}

func logRun(cfg *config.Config, command string, opts processor.Options, report *processor.Report, err error) {
	l := audit.NewLogger(cfg.Audit.Path, cfg.Audit.Enabled)
	entry := audit.Entry{
		Command:   command,
		Column:    opts.Column,
		InputFile: opts.Input,
		ExitCode:  output.ExitCode(err),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if report != nil {
		entry.OutputFile = report.Output
		entry.Rows = report.Rows
		entry.Merges = report.Merges
		entry.DurationMs = report.DurationMs
	}
	l.Log(context.Background(), entry)
}
