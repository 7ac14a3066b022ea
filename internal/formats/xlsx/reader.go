// Package xlsx reads and writes .xlsx workbooks for the merge resolver.
package xlsx

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/unmerge/internal/unmerge"
)

// Extensions lists the workbook extensions excelize can open.
var Extensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// Supported reports whether path has a workbook extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Book is an open workbook. Callers must Close it.
type Book struct {
	Path string
	f    *excelize.File
}

// Open opens the workbook at path.
func Open(path string) (*Book, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s — check that the path is correct", unmerge.ErrInputNotFound, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &unmerge.IOError{Op: "read", Path: path, Err: fmt.Errorf("is this a valid .xlsx file? %w", err)}
	}
	return &Book{Path: path, f: f}, nil
}

// OpenBytes opens a workbook held in memory.
func OpenBytes(data []byte) (*Book, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &unmerge.IOError{Op: "read", Path: "<stdin>", Err: err}
	}
	return &Book{Path: "<stdin>", f: f}, nil
}

// Close releases the workbook handle.
func (b *Book) Close() error {
	return b.f.Close()
}

// SheetNames returns the sheet names in workbook order.
func (b *Book) SheetNames() []string {
	return b.f.GetSheetList()
}

// FirstSheet returns the name of the first sheet.
func (b *Book) FirstSheet() (string, error) {
	names := b.SheetNames()
	if len(names) == 0 {
		return "", &unmerge.IOError{Op: "read", Path: b.Path, Err: fmt.Errorf("workbook has no sheets")}
	}
	return names[0], nil
}

// ReadCells returns the cell grid of the named sheet. Trailing empty cells are
// absent, so rows may be ragged.
func (b *Book) ReadCells(name string) (unmerge.Sheet, error) {
	rows, err := b.f.GetRows(name)
	if err != nil {
		return unmerge.Sheet{}, &unmerge.IOError{Op: "read", Path: b.Path, Err: fmt.Errorf("sheet %q: %w", name, err)}
	}
	return unmerge.Sheet{Name: name, Rows: rows}, nil
}

// ReadMergeRegions returns the merged ranges of the named sheet in the order
// the worksheet declares them.
func (b *Book) ReadMergeRegions(name string) ([]unmerge.MergeRegion, error) {
	cells, err := b.f.GetMergeCells(name)
	if err != nil {
		return nil, &unmerge.IOError{Op: "read", Path: b.Path, Err: fmt.Errorf("merged cells of %q: %w", name, err)}
	}

	regions := make([]unmerge.MergeRegion, 0, len(cells))
	for _, mc := range cells {
		r, err := regionFromAxes(mc.GetStartAxis(), mc.GetEndAxis())
		if err != nil {
			return nil, &unmerge.IOError{Op: "read", Path: b.Path, Err: err}
		}
		regions = append(regions, r)
	}
	return regions, nil
}

// Load reads the first sheet and its merged ranges. The grid is returned as
// GetRows reports it; merged ranges may reach past the last row.
func (b *Book) Load() (unmerge.Sheet, []unmerge.MergeRegion, error) {
	name, err := b.FirstSheet()
	if err != nil {
		return unmerge.Sheet{}, nil, err
	}
	sheet, err := b.ReadCells(name)
	if err != nil {
		return unmerge.Sheet{}, nil, err
	}
	regions, err := b.ReadMergeRegions(name)
	if err != nil {
		return unmerge.Sheet{}, nil, err
	}
	return sheet, regions, nil
}

func regionFromAxes(start, end string) (unmerge.MergeRegion, error) {
	sc, sr, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return unmerge.MergeRegion{}, fmt.Errorf("invalid merge start %q: %w", start, err)
	}
	ec, er, err := excelize.CellNameToCoordinates(end)
	if err != nil {
		return unmerge.MergeRegion{}, fmt.Errorf("invalid merge end %q: %w", end, err)
	}
	return unmerge.MergeRegion{
		StartRow: sr - 1,
		EndRow:   er - 1,
		StartCol: sc - 1,
		EndCol:   ec - 1,
	}.Normalize(), nil
}

// CellName converts 0-indexed grid coordinates to an A1 reference.
func CellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}
