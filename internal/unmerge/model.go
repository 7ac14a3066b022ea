// Package unmerge resolves vertically merged cells in a tabular sheet.
//
// A worksheet often shows one value merged across several rows of a column.
// Row-oriented consumers only see that value on the first row. Resolve copies
// the anchor value onto every row the merge covers so each row is complete on
// its own.
package unmerge

import "fmt"

// DefaultColumn is the header name resolved when none is configured.
const DefaultColumn = "NOTES"

// Sheet is a row-major grid. Row 0 is the header row. Rows may be ragged;
// a cell past the end of a row is absent and reads as "".
type Sheet struct {
	Name string     `json:"name,omitempty"`
	Rows [][]string `json:"rows"`
}

// Headers returns the header row, or nil for an empty sheet.
func (s Sheet) Headers() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0]
}

// Cell returns the value at (row, col) and whether it was present.
func (s Sheet) Cell(row, col int) (string, bool) {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return "", false
	}
	return s.Rows[row][col], true
}

// MergeRegion is a rectangular merged range. Bounds are inclusive and
// 0-indexed against the sheet grid, so row 0 is the header row.
type MergeRegion struct {
	StartRow int `json:"startRow" yaml:"startRow"`
	EndRow   int `json:"endRow" yaml:"endRow"`
	StartCol int `json:"startCol" yaml:"startCol"`
	EndCol   int `json:"endCol" yaml:"endCol"`
}

// Normalize returns the region with start and end bounds in ascending order.
func (m MergeRegion) Normalize() MergeRegion {
	if m.StartRow > m.EndRow {
		m.StartRow, m.EndRow = m.EndRow, m.StartRow
	}
	if m.StartCol > m.EndCol {
		m.StartCol, m.EndCol = m.EndCol, m.StartCol
	}
	return m
}

// Valid reports whether every coordinate is non-negative.
func (m MergeRegion) Valid() bool {
	return m.StartRow >= 0 && m.EndRow >= 0 && m.StartCol >= 0 && m.EndCol >= 0
}

// SingleColumn reports whether the region spans exactly column col.
func (m MergeRegion) SingleColumn(col int) bool {
	return m.StartCol == col && m.EndCol == col
}

// Covers reports whether the region spans more than one column and includes col.
func (m MergeRegion) Covers(col int) bool {
	return m.StartCol <= col && col <= m.EndCol && m.StartCol != m.EndCol
}

// Rows returns the number of rows the region spans.
func (m MergeRegion) Rows() int {
	return m.EndRow - m.StartRow + 1
}

func (m MergeRegion) String() string {
	return fmt.Sprintf("rows %d-%d, cols %d-%d", m.StartRow, m.EndRow, m.StartCol, m.EndCol)
}

// IndexOf returns the index of the first header exactly equal to name, or -1.
func IndexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}
