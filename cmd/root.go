// Package cmd contains all CLI commands for the unmerge binary.
package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/unmerge/cmd/batch"
	"github.com/klytics/unmerge/cmd/completion"
	cmdconfig "github.com/klytics/unmerge/cmd/config"
	"github.com/klytics/unmerge/cmd/history"
	"github.com/klytics/unmerge/cmd/inspect"
	"github.com/klytics/unmerge/cmd/version"
	cmdwatch "github.com/klytics/unmerge/cmd/watch"
	"github.com/klytics/unmerge/internal/config"
	"github.com/klytics/unmerge/internal/output"
	"github.com/klytics/unmerge/internal/unmerge"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool
)

// colorDisabled reports whether console color is off, either from --no-color
// or from the output.color setting.
func colorDisabled(cmd *cobra.Command) bool {
	if noColor {
		return true
	}
	cfg, err := config.LoadWithFlags(cmd.Flags())
	return err == nil && !cfg.Output.Color
}

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "unmerge <input-file> [output-file]",
		Short: "Copy vertically merged cell values onto every row they cover",
		Long: `unmerge rewrites a spreadsheet so that a value merged across several rows
of one column is repeated on every row. Row-oriented importers (CSV loaders,
databases) then see the value everywhere instead of only on the first row.

The first sheet is processed. The output defaults to <input>_processed.xlsx.
An output path ending in .csv, .json or .md exports the resolved table as text.

Examples:
  unmerge inventory.xlsx
  unmerge inventory.xlsx flat.xlsx --column REMARKS
  unmerge inventory.xlsx inventory.csv
  unmerge inventory.xlsx --keep-style --preview 5 --preview-format yaml`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if colorDisabled(cmd) {
				color.NoColor = true
			}
			if jsonOutput {
				os.Setenv("UNMERGE_JSON", "true")
			}
		},
		RunE: runUnmerge,
	}

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	pf.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	pf.BoolVar(&noColor, "no-color", false, "Disable ANSI color output")
	pf.StringP("column", "c", unmerge.DefaultColumn, "Header of the column whose merged cells are resolved")
	pf.String("suffix", "_processed", "Suffix inserted before the extension of default output paths")
	pf.Bool("keep-style", false, "Patch a copy of the source workbook so formatting is preserved")

	rootCmd.Flags().Int("preview", 3, "Number of processed rows to preview (0 disables)")
	rootCmd.Flags().String("preview-format", "json", "Preview format: json | yaml")
	rootCmd.Flags().Bool("dry-run", false, "Resolve and preview without writing a file")

	// Register subcommands
	rootCmd.AddCommand(batch.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(inspect.NewCommand())
	rootCmd.AddCommand(history.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and exits with a status derived from the error.
func Execute() {
	rootCmd := NewRootCommand()
	os.Exit(run(rootCmd))
}

func run(rootCmd *cobra.Command) int {
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return output.ExitOK
	}

	if cmd == nil {
		cmd = rootCmd
	}
	code := output.ExitCode(err)
	if jsonOutput {
		if jerr := output.PrintJSONError(cmd.CommandPath(), err, code); jerr == nil {
			return code
		}
	}
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", err)
	return code
}
