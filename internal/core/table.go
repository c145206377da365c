package core

// table.go parses decoded text into a Table and infers a type per column.
//
// Inference looks at the whole column at once (there is no chunked guessing),
// so a column is numeric only when every non-missing cell in the file is.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ColumnKind is the inferred value type of a column.
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindInt
	KindFloat
	KindBool
)

// String returns the lowercase kind name used in status output.
func (k ColumnKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Table is a parsed semicolon-delimited file.
// Rows hold the raw decoded text; every row has len(Columns) cells.
type Table struct {
	Columns []string
	Kinds   []ColumnKind
	Rows    [][]string
}

// ParseOptions controls ParseTable.
type ParseOptions struct {
	Delimiter  rune
	InferTypes bool
}

// ParseTable parses decoded text into a Table.
//
// The first record is the header. Rows shorter than the header are padded with
// empty (missing) cells; rows longer than the header are an ErrMalformedRow.
// Text with no header at all is ErrEmptyInput.
func ParseTable(text string, opts ParseOptions) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = opts.Delimiter
	if r.Comma == 0 {
		r.Comma = ';'
	}
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedRow, err)
	}

	t := &Table{Columns: mangleHeader(header)}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}

		if len(rec) > len(t.Columns) {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: expected %d fields, saw %d",
				ErrMalformedRow, line, len(t.Columns), len(rec))
		}
		for len(rec) < len(t.Columns) {
			rec = append(rec, "")
		}
		t.Rows = append(t.Rows, rec)
	}

	t.Kinds = make([]ColumnKind, len(t.Columns))
	if opts.InferTypes {
		for i := range t.Columns {
			t.Kinds[i] = t.inferColumn(i)
		}
	}

	return t, nil
}

// mangleHeader makes column names unique and non-empty.
// Duplicates become "X.1", "X.2"; blanks become "Unnamed: <index>".
func mangleHeader(header []string) []string {
	cols := make([]string, len(header))
	used := make(map[string]bool, len(header))
	dupes := make(map[string]int)

	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for used[name] {
			dupes[h]++
			name = h + "." + strconv.Itoa(dupes[h])
		}
		used[name] = true
		cols[i] = name
	}
	return cols
}

// inferColumn picks the narrowest kind that every non-missing cell satisfies.
func (t *Table) inferColumn(col int) ColumnKind {
	allInt, allFloat, allBool := true, true, true
	seen := false

	for _, row := range t.Rows {
		v := row[col]
		if IsMissing(v) {
			continue
		}
		seen = true
		v = strings.TrimSpace(v)

		if allInt {
			if _, ok := parseInt(v); !ok {
				allInt = false
			}
		}
		if allFloat {
			if _, ok := parseFloat(v); !ok {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBool(v); !ok {
				allBool = false
			}
		}
		if !allInt && !allFloat && !allBool {
			return KindString
		}
	}

	switch {
	case !seen:
		return KindString
	case allInt:
		return KindInt
	case allFloat:
		return KindFloat
	case allBool:
		return KindBool
	default:
		return KindString
	}
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// parseFloat accepts plain decimal and scientific notation only; hex floats,
// digit separators and non-finite values stay text.
func parseFloat(s string) (float64, bool) {
	if strings.ContainsAny(s, "xX_pP") {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	}
	return false, false
}
