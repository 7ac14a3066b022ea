// Package output provides formatting utilities for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klytics/unmerge/internal/unmerge"
)

// Format represents a preview serialization format.
type Format int

const (
	// FormatJSON renders each row as an indented JSON object.
	FormatJSON Format = iota
	// FormatYAML renders the rows as a YAML sequence of mappings.
	FormatYAML
)

// ParseFormat parses "json" or "yaml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatJSON, fmt.Errorf("unknown preview format %q — use json or yaml", s)
	}
}

// Writer handles formatted output to a destination.
type Writer struct {
	dest   io.Writer
	format Format
}

// NewWriter creates a new output writer with the given format.
func NewWriter(dest io.Writer, format Format) *Writer {
	if dest == nil {
		dest = os.Stdout
	}
	return &Writer{
		dest:   dest,
		format: format,
	}
}

// WritePreview writes the first n records. n <= 0 writes nothing.
func (w *Writer) WritePreview(records []unmerge.Record, n int) error {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	if n > len(records) {
		n = len(records)
	}
	records = records[:n]

	if w.format == FormatYAML {
		enc := yaml.NewEncoder(w.dest)
		enc.SetIndent(2)
		if err := enc.Encode(recordsNode(records)); err != nil {
			return err
		}
		return enc.Close()
	}
	return w.WriteJSON(records)
}

// WriteJSON encodes a value as pretty-printed JSON.
func (w *Writer) WriteJSON(v interface{}) error {
	enc := json.NewEncoder(w.dest)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteLn writes a line of text.
func (w *Writer) WriteLn(s string) error {
	_, err := fmt.Fprintln(w.dest, s)
	return err
}

// WriteError writes an error message to stderr.
func WriteError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// recordsNode keeps header order, which a map would lose.
func recordsNode(records []unmerge.Record) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, rec := range records {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range rec {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
			)
		}
		seq.Content = append(seq.Content, m)
	}
	return seq
}
