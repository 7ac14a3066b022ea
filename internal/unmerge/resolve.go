package unmerge

// Result is a resolved sheet.
type Result struct {
	// Headers is a copy of the header row.
	Headers []string `json:"headers"`
	// Rows holds one record per data row, in input order.
	Rows []Record `json:"rows"`
	// RawRows is the full grid with the header first, ready to be written back.
	RawRows [][]string `json:"-"`

	TargetColumn string `json:"targetColumn"`
	TargetIndex  int    `json:"targetIndex"`
	// Applied lists the single-column regions on the target column, in the
	// order they were applied.
	Applied []MergeRegion `json:"applied"`
	// Wide lists multi-column regions that include the target column. They
	// are not applied.
	Wide []MergeRegion `json:"wide,omitempty"`
	// Filled counts data rows whose target cell came from a merge anchor.
	Filled int `json:"filled"`
}

// Resolve propagates merged values in column to every row each merge covers.
//
// Only regions spanning exactly the target column are applied. They are
// applied in slice order, so where two regions cover the same row the later
// one wins. The input sheet is not modified.
func Resolve(sheet Sheet, regions []MergeRegion, column string) (*Result, error) {
	headers := sheet.Headers()
	target := IndexOf(headers, column)
	if target < 0 {
		return nil, &ColumnNotFoundError{Column: column, Headers: append([]string(nil), headers...)}
	}

	res := &Result{
		Headers:      append([]string(nil), headers...),
		TargetColumn: column,
		TargetIndex:  target,
	}

	fill := make(map[int]string)
	for _, r := range regions {
		if !r.Valid() {
			continue
		}
		r = r.Normalize()
		if !r.SingleColumn(target) {
			if r.Covers(target) {
				res.Wide = append(res.Wide, r)
			}
			continue
		}
		anchor, _ := sheet.Cell(r.StartRow, target)
		// Rows past the end of the sheet do not exist and are never added.
		last := min(r.EndRow, len(sheet.Rows)-1)
		for row := r.StartRow; row <= last; row++ {
			fill[row] = anchor
		}
		res.Applied = append(res.Applied, r)
	}

	width := len(headers)
	res.RawRows = make([][]string, len(sheet.Rows))
	res.RawRows[0] = append([]string(nil), headers...)
	res.Rows = make([]Record, 0, len(sheet.Rows)-1)

	for i := 1; i < len(sheet.Rows); i++ {
		src := sheet.Rows[i]
		n := len(src)
		if n < width {
			n = width
		}
		row := make([]string, n)
		copy(row, src)
		if v, ok := fill[i]; ok {
			row[target] = v
			res.Filled++
		}
		res.RawRows[i] = row
		res.Rows = append(res.Rows, NewRecord(headers, row))
	}

	return res, nil
}
