// Package processor runs the load, resolve and write pipeline for one workbook.
package processor

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/klytics/unmerge/internal/formats/convert"
	"github.com/klytics/unmerge/internal/formats/xlsx"
	"github.com/klytics/unmerge/internal/unmerge"
)

// DefaultSuffix is inserted before the extension of the default output path.
const DefaultSuffix = "_processed"

// Options control a single run.
type Options struct {
	Input  string
	// Output is the destination. Empty means OutputPath(Input, Suffix).
	// A .csv, .json or .md extension exports the resolved table as text.
	Output string
	Column string
	Suffix string
	// KeepStyle patches a copy of the source workbook instead of writing a
	// fresh one, so formatting survives.
	KeepStyle bool
	// DryRun resolves without writing anything.
	DryRun bool
}

// Report describes a completed run.
type Report struct {
	Input      string          `json:"input"`
	Output     string          `json:"output,omitempty"`
	Sheet      string          `json:"sheet"`
	Rows       int             `json:"rows"`
	Columns    int             `json:"columns"`
	Merges     int             `json:"merges"`
	DurationMs int64           `json:"durationMs"`
	Result     *unmerge.Result `json:"-"`
}

// OutputPath inserts suffix before the extension of input.
// "data/stock.xlsx" becomes "data/stock_processed.xlsx".
func OutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ext
}

// IsOutput reports whether path looks like a file this tool produced.
func IsOutput(path, suffix string) bool {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), suffix)
}

// Process loads the first sheet of opts.Input, resolves merges on the target
// column and writes the result. Nothing is written if any step fails.
func Process(opts Options) (*Report, error) {
	start := time.Now()

	if opts.Input == "" {
		return nil, unmerge.ErrUsage
	}
	if opts.Column == "" {
		opts.Column = unmerge.DefaultColumn
	}
	if opts.Output == "" {
		opts.Output = OutputPath(opts.Input, opts.Suffix)
	}

	book, err := xlsx.Open(opts.Input)
	if err != nil {
		return nil, err
	}
	sheet, regions, err := book.Load()
	book.Close()
	if err != nil {
		return nil, err
	}

	res, err := unmerge.Resolve(sheet, regions, opts.Column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(opts.Input), err)
	}

	report := &Report{
		Input:   opts.Input,
		Sheet:   sheet.Name,
		Rows:    len(res.Rows),
		Columns: len(res.Headers),
		Merges:  len(res.Applied),
		Result:  res,
	}

	if !opts.DryRun {
		switch {
		case convert.DetectFormat(opts.Output) != "":
			err = convert.WriteFile(res, opts.Output)
		case opts.KeepStyle:
			err = xlsx.WriteStyled(opts.Input, opts.Output, sheet.Name, res)
		default:
			err = xlsx.WriteFile(xlsx.BuildSheet(sheet.Name, res.RawRows), opts.Output)
		}
		if err != nil {
			return nil, err
		}
		report.Output = opts.Output
	}

	report.DurationMs = time.Since(start).Milliseconds()
	return report, nil
}
