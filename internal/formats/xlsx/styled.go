package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/unmerge/internal/unmerge"
)

// WriteStyled writes res into a copy of the source workbook at dst.
//
// The source is patched rather than rebuilt: each applied merge on the target
// column is unmerged, its rows receive the resolved value, and the anchor's
// cell style is copied onto them. Column widths, images and any other sheets
// are carried over unchanged.
func WriteStyled(src, dst, sheet string, res *unmerge.Result) error {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return &unmerge.IOError{Op: "read", Path: src, Err: err}
	}
	defer f.Close()

	col := res.TargetIndex
	for _, r := range res.Applied {
		topLeft, err := CellName(r.StartRow, col)
		if err != nil {
			return writeErr(dst, err)
		}
		bottomRight, err := CellName(r.EndRow, col)
		if err != nil {
			return writeErr(dst, err)
		}

		style, err := f.GetCellStyle(sheet, topLeft)
		if err != nil {
			return writeErr(dst, fmt.Errorf("style of %s: %w", topLeft, err))
		}
		if err := f.UnmergeCell(sheet, topLeft, bottomRight); err != nil {
			return writeErr(dst, fmt.Errorf("unmerge %s:%s: %w", topLeft, bottomRight, err))
		}

		for row := r.StartRow; row <= r.EndRow && row < len(res.RawRows); row++ {
			if row == 0 {
				continue
			}
			cell, err := CellName(row, col)
			if err != nil {
				return writeErr(dst, err)
			}
			if err := f.SetCellStr(sheet, cell, res.RawRows[row][col]); err != nil {
				return writeErr(dst, fmt.Errorf("could not set cell %s: %w", cell, err))
			}
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return writeErr(dst, fmt.Errorf("could not style cell %s: %w", cell, err))
			}
		}
	}

	if err := f.SaveAs(dst); err != nil {
		return writeErr(dst, err)
	}
	return nil
}
