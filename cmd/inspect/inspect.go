// Package inspect provides a read-only view of a workbook's merged cells.
package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/unmerge/internal/config"
	"github.com/klytics/unmerge/internal/formats/xlsx"
	"github.com/klytics/unmerge/internal/unmerge"
)

// Merge kinds relative to the target column.
const (
	KindApplied = "applied" // single-column merge on the target column
	KindWide    = "wide"    // spans the target column and its neighbours
	KindOther   = "other"
)

// MergeInfo describes one merged range.
type MergeInfo struct {
	Range  string              `json:"range"`
	Region unmerge.MergeRegion `json:"region"`
	Anchor string              `json:"anchor"`
	Kind   string              `json:"kind"`
}

// Report is the result of inspecting a workbook.
type Report struct {
	File        string      `json:"file"`
	Sheets      []string    `json:"sheets"`
	Sheet       string      `json:"sheet"`
	Headers     []string    `json:"headers"`
	Rows        int         `json:"rows"`
	Column      string      `json:"column"`
	ColumnIndex int         `json:"columnIndex"`
	Merges      []MergeInfo `json:"merges"`
	Preview     [][]string  `json:"preview,omitempty"`
}

// NewCommand returns the inspect subcommand.
func NewCommand() *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "inspect <file.xlsx>",
		Short: "Show headers and merged ranges without writing anything",
		Long:  "Reads the first sheet of a workbook and lists its merged ranges, marking which ones would be applied to the target column. Pass '-' to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")

			cfg, err := config.LoadWithFlags(cmd.Flags())
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}

			var book *xlsx.Book
			if args[0] == "-" {
				data, readErr := io.ReadAll(os.Stdin)
				if readErr != nil {
					return fmt.Errorf("could not read from stdin: %w", readErr)
				}
				if len(data) == 0 {
					return fmt.Errorf("no input provided — pass a workbook path or pipe data to stdin")
				}
				book, err = xlsx.OpenBytes(data)
			} else {
				if !xlsx.Supported(args[0]) {
					return fmt.Errorf("expected a workbook (%s), got %q", strings.Join(xlsx.Extensions, ", "), args[0])
				}
				book, err = xlsx.Open(args[0])
			}
			if err != nil {
				return err
			}
			defer book.Close()

			report, err := Inspect(book, cfg.Column, rows)
			if err != nil {
				return err
			}

			if jsonFlag {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(os.Stdout, report)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 5, "Number of raw rows to show (0 hides the table)")

	return cmd
}

// Inspect classifies the merged ranges of the book's first sheet.
// A missing target column is not an error here; ColumnIndex is -1.
func Inspect(book *xlsx.Book, column string, previewRows int) (*Report, error) {
	sheet, regions, err := book.Load()
	if err != nil {
		return nil, err
	}

	headers := sheet.Headers()
	report := &Report{
		File:        book.Path,
		Sheets:      book.SheetNames(),
		Sheet:       sheet.Name,
		Headers:     headers,
		Column:      column,
		ColumnIndex: unmerge.IndexOf(headers, column),
	}
	if len(sheet.Rows) > 0 {
		report.Rows = len(sheet.Rows) - 1
	}

	for _, r := range regions {
		start, _ := xlsx.CellName(r.StartRow, r.StartCol)
		end, _ := xlsx.CellName(r.EndRow, r.EndCol)
		anchor, _ := sheet.Cell(r.StartRow, r.StartCol)

		kind := KindOther
		switch {
		case report.ColumnIndex < 0:
		case r.SingleColumn(report.ColumnIndex):
			kind = KindApplied
		case r.Covers(report.ColumnIndex):
			kind = KindWide
		}
		report.Merges = append(report.Merges, MergeInfo{
			Range:  start + ":" + end,
			Region: r,
			Anchor: anchor,
			Kind:   kind,
		})
	}

	if previewRows > 0 {
		n := min(previewRows+1, len(sheet.Rows))
		report.Preview = sheet.Rows[:n]
	}
	return report, nil
}

func printReport(out io.Writer, r *Report) {
	headerStyle := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.FgHiBlack)

	headerStyle.Fprintf(out, "File: %s\n", r.File)
	fmt.Fprintf(out, "  sheets:  %s (using %q)\n", strings.Join(r.Sheets, ", "), r.Sheet)
	fmt.Fprintf(out, "  rows:    %d\n", r.Rows)
	fmt.Fprintf(out, "  headers: %s\n", strings.Join(r.Headers, " | "))
	if r.ColumnIndex < 0 {
		color.New(color.FgRed).Fprintf(out, "  column %q not found\n", r.Column)
	} else {
		fmt.Fprintf(out, "  column:  %q (index %d)\n", r.Column, r.ColumnIndex)
	}

	headerStyle.Fprintf(out, "\nMerged ranges: %d\n", len(r.Merges))
	kindStyle := map[string]*color.Color{
		KindApplied: color.New(color.FgGreen),
		KindWide:    color.New(color.FgYellow),
		KindOther:   dim,
	}
	for _, m := range r.Merges {
		kindStyle[m.Kind].Fprintf(out, "  %-8s", m.Kind)
		fmt.Fprintf(out, "%-12s %q\n", m.Range, m.Anchor)
	}

	if len(r.Preview) > 0 {
		fmt.Fprintln(out)
		printTable(out, r.Preview)
	}
}

func printTable(out io.Writer, rows [][]string) {
	dim := color.New(color.FgHiBlack)

	colWidths := make([]int, 0)
	for _, row := range rows {
		for j, cell := range row {
			for len(colWidths) <= j {
				colWidths = append(colWidths, 0)
			}
			if len(cell) > colWidths[j] {
				colWidths[j] = len(cell)
			}
		}
	}
	for i := range colWidths {
		colWidths[i] = max(3, min(colWidths[i], 40))
	}

	printRow(out, rows[0], colWidths, color.New(color.Bold))
	dim.Fprint(out, "  ")
	for j, w := range colWidths {
		if j > 0 {
			dim.Fprint(out, "+-")
		}
		dim.Fprint(out, strings.Repeat("-", w+1))
	}
	fmt.Fprintln(out)

	for i := 1; i < len(rows); i++ {
		printRow(out, rows[i], colWidths, nil)
	}
}

func printRow(out io.Writer, row []string, colWidths []int, style *color.Color) {
	fmt.Fprint(out, "  ")
	for j := range colWidths {
		if j > 0 {
			fmt.Fprint(out, "| ")
		}
		cell := ""
		if j < len(row) {
			cell = row[j]
		}
		if len(cell) > colWidths[j] {
			cell = cell[:colWidths[j]-1] + "~"
		}
		padded := cell + strings.Repeat(" ", colWidths[j]-len(cell)+1)
		if style != nil {
			style.Fprint(out, padded)
		} else {
			fmt.Fprint(out, padded)
		}
	}
	fmt.Fprintln(out)
}
