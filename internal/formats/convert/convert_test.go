package convert

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klytics/unmerge/internal/unmerge"
)

func resolved(t *testing.T) *unmerge.Result {
	t.Helper()
	sheet := unmerge.Sheet{Name: "Sheet1", Rows: [][]string{
		{"PHOTO", "STYLE", "NOTES"},
		{"p1.jpg", "A-100", "Fragile, keep dry"},
		{"p2.jpg", "A-101", ""},
		{"p3.jpg", "A|102", ""},
	}}
	regions := []unmerge.MergeRegion{{StartRow: 1, EndRow: 3, StartCol: 2, EndCol: 2}}
	res, err := unmerge.Resolve(sheet, regions, "NOTES")
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"out.csv", "csv"},
		{"OUT.JSON", "json"},
		{"table.md", "md"},
		{"table.markdown", "md"},
		{"out.xlsx", ""},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestToCSV(t *testing.T) {
	out, err := ToCSV(resolved(t))
	if err != nil {
		t.Fatal(err)
	}
	want := "PHOTO,STYLE,NOTES\n" +
		"p1.jpg,A-100,\"Fragile, keep dry\"\n" +
		"p2.jpg,A-101,\"Fragile, keep dry\"\n" +
		"p3.jpg,A|102,\"Fragile, keep dry\"\n"
	if out != want {
		t.Errorf("ToCSV =\n%s\nwant\n%s", out, want)
	}
}

func TestToJSONKeepsHeaderOrder(t *testing.T) {
	out, err := ToJSON(resolved(t))
	if err != nil {
		t.Fatal(err)
	}
	first := strings.Index(out, `"PHOTO"`)
	last := strings.Index(out, `"NOTES"`)
	if first < 0 || last < 0 || first > last {
		t.Errorf("expected PHOTO before NOTES, got: %s", out)
	}
	if strings.Count(out, "Fragile, keep dry") != 3 {
		t.Errorf("expected value on three rows, got: %s", out)
	}
}

func TestToJSONEmpty(t *testing.T) {
	res, err := unmerge.Resolve(unmerge.Sheet{Rows: [][]string{{"NOTES"}}}, nil, "NOTES")
	if err != nil {
		t.Fatal(err)
	}
	out, err := ToJSON(res)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("ToJSON = %q, want []", out)
	}
}

func TestToMarkdown(t *testing.T) {
	out := ToMarkdown(resolved(t))
	if !strings.HasPrefix(out, "| PHOTO | STYLE | NOTES |\n| --- | --- | --- |\n") {
		t.Errorf("unexpected header, got: %s", out)
	}
	if !strings.Contains(out, `| p3.jpg | A\|102 | Fragile, keep dry |`) {
		t.Errorf("expected escaped pipe, got: %s", out)
	}
}

func TestRenderUnsupported(t *testing.T) {
	_, err := Render(resolved(t), "docx")
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported error, got %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")
	if err := WriteFile(resolved(t), path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "PHOTO,STYLE,NOTES\n") {
		t.Errorf("unexpected file content: %s", data)
	}
}

func TestWriteFileErrors(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(resolved(t), filepath.Join(dir, "out.txt")); err == nil {
		t.Error("expected error for unknown extension")
	}

	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	err := WriteFile(resolved(t), filepath.Join(blocker, "out.csv"))
	var ioErr *unmerge.IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "write" {
		t.Errorf("expected write IOError, got %v", err)
	}
}
