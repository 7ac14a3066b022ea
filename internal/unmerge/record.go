package unmerge

import (
	"bytes"
	"encoding/json"
)

// Field is one header/value pair of a Record.
type Field struct {
	Key   string
	Value string
}

// Record is a data row keyed by header name. Field order follows the header
// row, and duplicate header names are kept as separate fields.
type Record []Field

// NewRecord pairs headers with row values. Missing values read as "".
func NewRecord(headers, row []string) Record {
	rec := make(Record, len(headers))
	for i, h := range headers {
		v := ""
		if i < len(row) {
			v = row[i]
		}
		rec[i] = Field{Key: h, Value: v}
	}
	return rec
}

// Get returns the value of the first field named key.
func (r Record) Get(key string) (string, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Keys returns the field names in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Map returns the record as a map. Later duplicate keys overwrite earlier ones.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, f := range r {
		m[f.Key] = f.Value
	}
	return m
}

// MarshalJSON encodes the record as a JSON object in header order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
