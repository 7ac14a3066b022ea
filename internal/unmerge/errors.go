package unmerge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUsage indicates the command was invoked without an input file.
var ErrUsage = errors.New("missing input file")

// ErrInputNotFound indicates the input path does not exist.
var ErrInputNotFound = errors.New("input file not found")

// ErrColumnNotFound indicates the target header is absent from the sheet.
var ErrColumnNotFound = errors.New("column not found")

// ColumnNotFoundError reports which column was requested and what headers
// the sheet actually has. It matches ErrColumnNotFound with errors.Is.
type ColumnNotFoundError struct {
	Column  string
	Headers []string
}

func (e *ColumnNotFoundError) Error() string {
	if len(e.Headers) == 0 {
		return fmt.Sprintf("column %q not found: sheet has no header row", e.Column)
	}
	return fmt.Sprintf("column %q not found in headers [%s]", e.Column, strings.Join(e.Headers, ", "))
}

func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}

// IOError wraps a failure to read or write a workbook.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("could not %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
