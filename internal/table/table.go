// Package table loads a study's CSV data source into a typed column table
// and derives the named scalar aggregates the template context exposes.
package table

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
)

// Kind classifies a column's content.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

// Column is one named column of the table. Numeric columns carry parsed
// float values; text columns keep the raw strings. A column is numeric only
// if every cell parses as a float; an empty cell makes the column text.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string

	// badRow is the 1-based file row of the first non-numeric cell
	// (0 when the column is numeric). Used for DataError reporting.
	badRow int
}

// Table is the parsed CSV data source.
type Table struct {
	Path    string
	Columns []Column
	Rows    int

	byName map[string]int
}

// Load parses the CSV file at path. Header row is required. Ragged rows are
// a DataError naming the offending row; cell typing is decided per column
// after the full read.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dberrors.DataMalformed(path, 0, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// FieldsPerRecord defaults to the header width; a short or long row
	// surfaces as csv.ErrFieldCount with line information.
	records, err := r.ReadAll()
	if err != nil {
		row := 0
		if pe, ok := err.(*csv.ParseError); ok {
			row = pe.Line
		}
		return nil, dberrors.DataMalformed(path, row, err)
	}
	if len(records) == 0 {
		return nil, dberrors.DataMalformed(path, 0, nil).WithContext("reason", "empty file")
	}

	header := records[0]
	rows := records[1:]
	t := &Table{
		Path:    path,
		Columns: make([]Column, len(header)),
		Rows:    len(rows),
		byName:  make(map[string]int, len(header)),
	}

	for i, name := range header {
		name = strings.TrimSpace(name)
		col := Column{Name: name, Kind: KindNumeric, Strings: make([]string, 0, len(rows))}
		floats := make([]float64, 0, len(rows))
		for rowIdx, rec := range rows {
			cell := strings.TrimSpace(rec[i])
			col.Strings = append(col.Strings, cell)
			if col.Kind != KindNumeric {
				continue
			}
			v, perr := strconv.ParseFloat(cell, 64)
			if perr != nil {
				col.Kind = KindText
				col.badRow = rowIdx + 2 // header is file row 1
				continue
			}
			floats = append(floats, v)
		}
		if col.Kind == KindNumeric {
			col.Floats = floats
		}
		t.Columns[i] = col
		t.byName[name] = i
	}

	return t, nil
}

// Column returns the named column, or nil if absent.
func (t *Table) Column(name string) *Column {
	idx, ok := t.byName[name]
	if !ok {
		return nil
	}
	return &t.Columns[idx]
}

// NumericColumn returns the named column's float values, failing with a
// DataError when the column is missing or holds non-numeric cells.
func (t *Table) NumericColumn(name string) ([]float64, error) {
	col := t.Column(name)
	if col == nil {
		return nil, dberrors.DataColumnUnknown(name)
	}
	if col.Kind != KindNumeric {
		return nil, dberrors.DataColumnNotNumeric(col.Name, col.badRow)
	}
	return col.Floats, nil
}

// NumericColumns returns every numeric column in declaration order.
func (t *Table) NumericColumns() []*Column {
	out := make([]*Column, 0, len(t.Columns))
	for i := range t.Columns {
		if t.Columns[i].Kind == KindNumeric {
			out = append(out, &t.Columns[i])
		}
	}
	return out
}
