// Package convert exports a resolved sheet to flat text formats.
// All conversions are pure Go and work on the resolved rows, so merged
// values are already filled in.
package convert

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klytics/unmerge/internal/unmerge"
)

// Formats lists the export formats, keyed by file extension.
var Formats = map[string]string{
	".csv":      "csv",
	".json":     "json",
	".md":       "md",
	".markdown": "md",
}

// DetectFormat returns the export format for path, or "" when path should
// be written as a workbook.
func DetectFormat(path string) string {
	return Formats[strings.ToLower(filepath.Ext(path))]
}

// Render converts res to the named format.
func Render(res *unmerge.Result, format string) (string, error) {
	switch format {
	case "csv":
		return ToCSV(res)
	case "json":
		return ToJSON(res)
	case "md":
		return ToMarkdown(res), nil
	default:
		return "", fmt.Errorf("unsupported export format: %q (supported: csv, json, md)", format)
	}
}

// WriteFile renders res in the format implied by the extension of path.
func WriteFile(res *unmerge.Result, path string) error {
	format := DetectFormat(path)
	if format == "" {
		return fmt.Errorf("could not detect export format from extension: %s", filepath.Ext(path))
	}
	out, err := Render(res, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &unmerge.IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return &unmerge.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// ToCSV writes the header row followed by every data row, padded to the
// header width.
func ToCSV(res *unmerge.Result) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(res.Headers); err != nil {
		return "", err
	}
	for _, rec := range res.Rows {
		row := make([]string, len(rec))
		for i, f := range rec {
			row[i] = f.Value
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return b.String(), w.Error()
}

// ToJSON writes the data rows as an array of objects in header order.
func ToJSON(res *unmerge.Result) (string, error) {
	rows := res.Rows
	if rows == nil {
		rows = []unmerge.Record{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// ToMarkdown writes a GFM table. Pipes inside cells are escaped.
func ToMarkdown(res *unmerge.Result) string {
	if len(res.Headers) == 0 {
		return ""
	}
	var b strings.Builder

	b.WriteString("| ")
	b.WriteString(strings.Join(escapeAll(res.Headers), " | "))
	b.WriteString(" |\n")

	b.WriteString("|")
	for range res.Headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, rec := range res.Rows {
		cells := make([]string, len(rec))
		for i, f := range rec {
			cells[i] = escapeCell(f.Value)
		}
		b.WriteString("| ")
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString(" |\n")
	}
	return b.String()
}

func escapeAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = escapeCell(c)
	}
	return out
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}
