package core

// normalize.go turns a parsed Table into Records.
//
// Every missing cell becomes a nil value, so it encodes as JSON null rather
// than "" or the text "nan". Present cells are converted to their column's
// inferred kind.

import (
	"bytes"
	"encoding/json"
	"strings"
)

// naTokens are the cell values treated as missing after trimming whitespace.
var naTokens = map[string]struct{}{
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell value represents a missing value:
// empty, whitespace-only, or a recognized NA token.
func IsMissing(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	_, ok := naTokens[v]
	return ok
}

// Record is one row keyed by column name. Values are string, int64, float64,
// bool, or nil for missing cells. JSON encoding keeps header order.
type Record struct {
	columns []string
	values  []any
}

// Get returns the value for column and whether the column exists.
func (r Record) Get(column string) (any, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.columns)
}

// Map returns the record as a plain map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// MarshalJSON implements json.Marshaler, writing fields in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Records normalizes the table into one Record per row, in file order.
// The column slice is shared between records.
func (t *Table) Records() []Record {
	records := make([]Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		values := make([]any, len(t.Columns))
		for i, raw := range row {
			values[i] = t.cellValue(i, raw)
		}
		records = append(records, Record{columns: t.Columns, values: values})
	}
	return records
}

// cellValue converts one raw cell according to its column kind.
func (t *Table) cellValue(col int, raw string) any {
	if IsMissing(raw) {
		return nil
	}

	kind := KindString
	if col < len(t.Kinds) {
		kind = t.Kinds[col]
	}

	trimmed := strings.TrimSpace(raw)
	switch kind {
	case KindInt:
		if n, ok := parseInt(trimmed); ok {
			return n
		}
	case KindFloat:
		if f, ok := parseFloat(trimmed); ok {
			return f
		}
	case KindBool:
		if b, ok := parseBool(trimmed); ok {
			return b
		}
	}
	return raw
}
