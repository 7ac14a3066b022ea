package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/unmerge/internal/unmerge"
)

// Workbook is a set of sheets to be written to a new file.
type Workbook struct {
	Sheets []unmerge.Sheet
}

// BuildSheet wraps a grid as a single-sheet workbook.
func BuildSheet(name string, rawRows [][]string) *Workbook {
	return &Workbook{Sheets: []unmerge.Sheet{{Name: name, Rows: rawRows}}}
}

// WriteFile creates a new .xlsx file from the given workbook data.
func WriteFile(wb *Workbook, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range wb.Sheets {
		sheetName := sheet.Name
		if sheetName == "" {
			sheetName = fmt.Sprintf("Sheet%d", i+1)
		}

		if i == 0 {
			defaultSheet := f.GetSheetName(0)
			if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
				return writeErr(path, fmt.Errorf("could not rename sheet: %w", err))
			}
		} else {
			if _, err := f.NewSheet(sheetName); err != nil {
				return writeErr(path, fmt.Errorf("could not create sheet %q: %w", sheetName, err))
			}
		}

		for rowIdx, row := range sheet.Rows {
			for colIdx, cell := range row {
				if cell == "" {
					continue
				}
				cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					return writeErr(path, fmt.Errorf("invalid cell coordinates: %w", err))
				}
				if err := f.SetCellStr(sheetName, cellName, cell); err != nil {
					return writeErr(path, fmt.Errorf("could not set cell %s: %w", cellName, err))
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return writeErr(path, err)
	}
	return nil
}

func writeErr(path string, err error) error {
	return &unmerge.IOError{Op: "write", Path: path, Err: err}
}
