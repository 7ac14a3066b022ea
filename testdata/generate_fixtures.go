//go:build ignore

// This program generates test fixture files for unmerge.
package main

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

func main() {
	if err := generateXlsx(); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating sample.xlsx: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Test fixtures generated successfully.")
}

// generateXlsx writes an inventory sheet with vertical NOTES merges,
// one wide merge, and a second sheet that is never processed.
func generateXlsx() error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Inventory"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	rows := [][]string{
		{"PHOTO", "STYLE", "COLOR", "NOTES"},
		{"p1.jpg", "A-100", "red", "Fragile"},
		{"p2.jpg", "A-101", "blue", ""},
		{"p3.jpg", "A-102", "green", ""},
		{"p4.jpg", "B-200", "red", "Handle with care"},
		{"p5.jpg", "B-201", "black", ""},
		{"p6.jpg", "C-300", "white", "Discontinued"},
		{"p7.jpg", "", "", ""},
		{"p8.jpg", "D-400", "grey", "Single"},
	}
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	for _, m := range [][2]string{
		{"D2", "D4"},
		{"D5", "D6"},
		{"B8", "D8"}, // spans NOTES but is wider than one column
	} {
		if err := f.MergeCell(sheet, m[0], m[1]); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", bold); err != nil {
		return err
	}

	if _, err := f.NewSheet("Summary"); err != nil {
		return err
	}
	if err := f.SetCellStr("Summary", "A1", "Generated fixture"); err != nil {
		return err
	}

	return f.SaveAs("testdata/sample.xlsx")
}
