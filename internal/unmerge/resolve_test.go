package unmerge

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func inventorySheet() Sheet {
	return Sheet{
		Name: "Inventory",
		Rows: [][]string{
			{"PHOTO", "STYLE", "NOTES"},
			{"p1.jpg", "A-100", "Fragile"},
			{"p2.jpg", "A-101"},
			{"p3.jpg", "A-102", ""},
		},
	}
}

func TestResolveEndToEnd(t *testing.T) {
	sheet := inventorySheet()
	regions := []MergeRegion{{StartRow: 1, EndRow: 3, StartCol: 2, EndCol: 2}}

	res, err := Resolve(sheet, regions, "NOTES")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 data rows, got %d", len(res.Rows))
	}
	for i, rec := range res.Rows {
		if v, _ := rec.Get("NOTES"); v != "Fragile" {
			t.Errorf("row %d: NOTES = %q, want %q", i+1, v, "Fragile")
		}
	}
	if len(res.RawRows) != len(sheet.Rows) {
		t.Errorf("expected %d raw rows, got %d", len(sheet.Rows), len(res.RawRows))
	}
	if res.Filled != 3 {
		t.Errorf("expected 3 filled rows, got %d", res.Filled)
	}
	if res.TargetIndex != 2 {
		t.Errorf("expected target index 2, got %d", res.TargetIndex)
	}
}

func TestResolvePropagatesOverExistingValues(t *testing.T) {
	sheet := Sheet{Rows: [][]string{
		{"ID", "NOTES"},
		{"1", "before"},
		{"2", "Handle with care"},
		{"3", "stale"},
		{"4"},
		{"5", "after"},
	}}
	regions := []MergeRegion{{StartRow: 2, EndRow: 4, StartCol: 1, EndCol: 1}}

	res, err := Resolve(sheet, regions, "NOTES")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"before", "Handle with care", "Handle with care", "Handle with care", "after"}
	for i, w := range want {
		if got := res.RawRows[i+1][1]; got != w {
			t.Errorf("row %d: got %q, want %q", i+1, got, w)
		}
	}
}

func TestResolveInvariants(t *testing.T) {
	tests := []struct {
		name    string
		sheet   Sheet
		regions []MergeRegion
	}{
		{
			name:  "no merges",
			sheet: inventorySheet(),
		},
		{
			name:    "ragged rows",
			sheet:   Sheet{Rows: [][]string{{"A", "B", "NOTES", "D"}, {"x"}, {}, {"1", "2", "3", "4", "5"}}},
			regions: []MergeRegion{{StartRow: 1, EndRow: 2, StartCol: 2, EndCol: 2}},
		},
		{
			name:    "merge past last row",
			sheet:   Sheet{Rows: [][]string{{"NOTES"}, {"a"}, {"b"}}},
			regions: []MergeRegion{{StartRow: 1, EndRow: 10, StartCol: 0, EndCol: 0}},
		},
		{
			name:  "header only",
			sheet: Sheet{Rows: [][]string{{"NOTES", "X"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.sheet, tt.regions, "NOTES")
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if len(res.Rows) != len(tt.sheet.Rows)-1 {
				t.Errorf("row count: got %d, want %d", len(res.Rows), len(tt.sheet.Rows)-1)
			}
			if len(res.RawRows) != len(tt.sheet.Rows) {
				t.Errorf("raw row count: got %d, want %d", len(res.RawRows), len(tt.sheet.Rows))
			}
			for i, row := range res.RawRows {
				if len(row) < len(res.Headers) {
					t.Errorf("raw row %d has %d cells, want at least %d", i, len(row), len(res.Headers))
				}
			}
			for i, rec := range res.Rows {
				if len(rec) != len(res.Headers) {
					t.Errorf("record %d has %d fields, want %d", i, len(rec), len(res.Headers))
				}
			}
		})
	}
}

func TestResolvePassthroughWithoutMerges(t *testing.T) {
	sheet := inventorySheet()
	res, err := Resolve(sheet, nil, "NOTES")
	if err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"PHOTO", "STYLE", "NOTES"},
		{"p1.jpg", "A-100", "Fragile"},
		{"p2.jpg", "A-101", ""},
		{"p3.jpg", "A-102", ""},
	}
	if !reflect.DeepEqual(res.RawRows, want) {
		t.Errorf("raw rows = %v, want %v", res.RawRows, want)
	}
	if res.Filled != 0 {
		t.Errorf("expected no filled rows, got %d", res.Filled)
	}
}

func TestResolveColumnNotFound(t *testing.T) {
	sheet := Sheet{Rows: [][]string{{"PHOTO", "STYLE"}, {"a", "b"}}}

	res, err := Resolve(sheet, nil, "NOTES")
	if res != nil {
		t.Error("expected no result on missing column")
	}
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
	var cnf *ColumnNotFoundError
	if !errors.As(err, &cnf) {
		t.Fatalf("expected *ColumnNotFoundError, got %T", err)
	}
	if cnf.Column != "NOTES" || len(cnf.Headers) != 2 {
		t.Errorf("unexpected error fields: %+v", cnf)
	}
}

func TestResolveColumnMatchIsExact(t *testing.T) {
	sheet := Sheet{Rows: [][]string{{"notes", " NOTES", "Notes"}}}
	if _, err := Resolve(sheet, nil, "NOTES"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("expected case-sensitive exact match to fail, got %v", err)
	}
}

func TestResolveEmptySheet(t *testing.T) {
	_, err := Resolve(Sheet{}, nil, "NOTES")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("expected ErrColumnNotFound for empty sheet, got %v", err)
	}
}

func TestResolveOverlapLastRegionWins(t *testing.T) {
	sheet := Sheet{Rows: [][]string{
		{"NOTES"},
		{"first"},
		{""},
		{"second"},
		{""},
	}}
	regions := []MergeRegion{
		{StartRow: 1, EndRow: 3, StartCol: 0, EndCol: 0},
		{StartRow: 3, EndRow: 4, StartCol: 0, EndCol: 0},
	}

	res, err := Resolve(sheet, regions, "NOTES")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "first", "second", "second"}
	for i, w := range want {
		if got := res.RawRows[i+1][0]; got != w {
			t.Errorf("row %d: got %q, want %q", i+1, got, w)
		}
	}

	// Reversing discovery order flips the winner on the shared row.
	reversed := []MergeRegion{regions[1], regions[0]}
	res, err = Resolve(sheet, reversed, "NOTES")
	if err != nil {
		t.Fatal(err)
	}
	if got := res.RawRows[3][0]; got != "first" {
		t.Errorf("shared row with reversed order: got %q, want %q", got, "first")
	}
}

func TestResolveIgnoresOtherColumnsAndWideMerges(t *testing.T) {
	sheet := Sheet{Rows: [][]string{
		{"PHOTO", "STYLE", "NOTES"},
		{"img", "S1", "keep"},
		{"", "", "mine"},
	}}
	regions := []MergeRegion{
		{StartRow: 1, EndRow: 2, StartCol: 0, EndCol: 0},
		{StartRow: 1, EndRow: 2, StartCol: 1, EndCol: 2},
		{StartRow: -1, EndRow: 2, StartCol: 2, EndCol: 2},
	}

	res, err := Resolve(sheet, regions, "NOTES")
	if err != nil {
		t.Fatal(err)
	}
	if got := res.RawRows[2][2]; got != "mine" {
		t.Errorf("wide merge should not propagate, got %q", got)
	}
	if got := res.RawRows[2][0]; got != "" {
		t.Errorf("merge on other column should not propagate, got %q", got)
	}
	if len(res.Applied) != 0 {
		t.Errorf("expected no applied regions, got %v", res.Applied)
	}
	if len(res.Wide) != 1 || res.Wide[0] != regions[1] {
		t.Errorf("expected wide region %v, got %v", regions[1], res.Wide)
	}
}

func TestResolveInvertedRegionIsNormalized(t *testing.T) {
	sheet := Sheet{Rows: [][]string{{"NOTES"}, {"x"}, {""}}}
	regions := []MergeRegion{{StartRow: 2, EndRow: 1, StartCol: 0, EndCol: 0}}

	res, err := Resolve(sheet, regions, "NOTES")
	if err != nil {
		t.Fatal(err)
	}
	if got := res.RawRows[2][0]; got != "x" {
		t.Errorf("got %q, want %q", got, "x")
	}
}

func TestResolveAnchorMissingCellIsEmpty(t *testing.T) {
	sheet := Sheet{Rows: [][]string{{"A", "NOTES"}, {"a"}, {"b", "old"}}}
	regions := []MergeRegion{{StartRow: 1, EndRow: 2, StartCol: 1, EndCol: 1}}

	res, err := Resolve(sheet, regions, "NOTES")
	if err != nil {
		t.Fatal(err)
	}
	if got := res.RawRows[2][1]; got != "" {
		t.Errorf("expected empty anchor to propagate as empty, got %q", got)
	}
}

func TestResolveRegionPastLastRowAddsNoRows(t *testing.T) {
	tests := []struct {
		name   string
		endRow int
	}{
		{"a few rows past", 9},
		{"whole column", 1048575},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := inventorySheet()
			regions := []MergeRegion{{StartRow: 1, EndRow: tt.endRow, StartCol: 2, EndCol: 2}}

			res, err := Resolve(sheet, regions, "NOTES")
			if err != nil {
				t.Fatal(err)
			}
			if len(res.Rows) != len(sheet.Rows)-1 || len(res.RawRows) != len(sheet.Rows) {
				t.Fatalf("rows = %d, raw = %d; want %d and %d", len(res.Rows), len(res.RawRows), len(sheet.Rows)-1, len(sheet.Rows))
			}
			if res.Filled != 3 {
				t.Errorf("Filled = %d, want 3", res.Filled)
			}
			for i, rec := range res.Rows {
				if v, _ := rec.Get("NOTES"); v != "Fragile" {
					t.Errorf("row %d NOTES = %q, want Fragile", i+1, v)
				}
			}
		})
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	sheet := Sheet{Rows: [][]string{{"NOTES"}, {"v"}, {"w"}}}
	regions := []MergeRegion{{StartRow: 1, EndRow: 2, StartCol: 0, EndCol: 0}}

	if _, err := Resolve(sheet, regions, "NOTES"); err != nil {
		t.Fatal(err)
	}
	if sheet.Rows[2][0] != "w" {
		t.Errorf("input sheet was modified: %v", sheet.Rows)
	}
}

func TestRecordJSONKeepsHeaderOrder(t *testing.T) {
	rec := NewRecord([]string{"Z", "A", "M"}, []string{"1", "2"})
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Z":"1","A":"2","M":""}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	if v, ok := rec.Get("M"); !ok || v != "" {
		t.Errorf("Get(M) = %q, %v", v, ok)
	}
	if _, ok := rec.Get("missing"); ok {
		t.Error("Get should report missing keys")
	}
	if !reflect.DeepEqual(rec.Keys(), []string{"Z", "A", "M"}) {
		t.Errorf("Keys() = %v", rec.Keys())
	}
}

func TestMergeRegionHelpers(t *testing.T) {
	m := MergeRegion{StartRow: 3, EndRow: 1, StartCol: 4, EndCol: 2}.Normalize()
	if m != (MergeRegion{StartRow: 1, EndRow: 3, StartCol: 2, EndCol: 4}) {
		t.Errorf("Normalize() = %+v", m)
	}
	if m.Rows() != 3 {
		t.Errorf("Rows() = %d", m.Rows())
	}
	if !m.Covers(3) || m.Covers(5) {
		t.Error("Covers() mismatch")
	}
	if m.SingleColumn(2) {
		t.Error("multi-column region reported as single column")
	}
}
