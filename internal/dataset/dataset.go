package dataset

import (
	"errors"
	"fmt"
)

// Sentinel errors for the loading boundary. Callers distinguish them with
// errors.Is; the quality engine surfaces them unchanged.
var (
	ErrSourceNotFound = errors.New("source not found")
	ErrInvalidInput   = errors.New("invalid input")
)

// Kind classifies a column for probe scoping.
type Kind int

const (
	KindNumeric Kind = iota
	KindCategorical
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	default:
		return "other"
	}
}

// Value is one cell. The empty string is the null marker; numeric columns
// additionally carry the parsed form.
type Value struct {
	Raw   string
	Null  bool
	Num   float64
	IsNum bool
}

// Column is an ordered sequence of values under one name.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NullCount returns the number of null cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Null {
			n++
		}
	}
	return n
}

// Dataset is a columnar snapshot of one table. It is immutable once built:
// every evaluation pass reads it, nothing writes it.
type Dataset struct {
	Columns []Column
}

func (d *Dataset) NumRows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Values)
}

func (d *Dataset) NumCols() int {
	return len(d.Columns)
}

// ColumnNames returns the header in original order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil when absent.
func (d *Dataset) Column(name string) *Column {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i]
		}
	}
	return nil
}

// Row reassembles one record in header order, nulls as empty strings.
func (d *Dataset) Row(i int) []string {
	row := make([]string, len(d.Columns))
	for c := range d.Columns {
		row[c] = d.Columns[c].Values[i].Raw
	}
	return row
}

// FromRecords builds a dataset from an already-decoded header and rows,
// inferring a kind for every column. A missing header or an empty body is a
// usage error, not a quality signal.
func FromRecords(header []string, rows [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidInput)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrInvalidInput)
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d",
				ErrInvalidInput, i+1, len(row), len(header))
		}
	}

	ds := &Dataset{Columns: make([]Column, len(header))}
	for c, name := range header {
		cells := make([]string, len(rows))
		for r := range rows {
			cells[r] = rows[r][c]
		}
		ds.Columns[c] = buildColumn(name, cells)
	}
	return ds, nil
}

// buildColumn infers the column kind and parses numerics in one pass over the
// raw cells. A column is numeric when every non-null cell looks like an int
// or a float, categorical when any non-null cell is plain text, and other
// when it is entirely null.
func buildColumn(name string, cells []string) Column {
	col := Column{Name: name, Values: make([]Value, len(cells))}

	nonNull := 0
	numeric := true
	for i, raw := range cells {
		if raw == "" {
			col.Values[i] = Value{Null: true}
			continue
		}
		nonNull++
		col.Values[i] = Value{Raw: raw}
		if numeric && !looksInt(raw) && !looksFloat(raw) {
			numeric = false
		}
	}

	switch {
	case nonNull == 0:
		col.Kind = KindOther
	case numeric:
		col.Kind = KindNumeric
		for i := range col.Values {
			if col.Values[i].Null {
				continue
			}
			col.Values[i].Num = parseNum(col.Values[i].Raw)
			col.Values[i].IsNum = true
		}
	default:
		col.Kind = KindCategorical
	}
	return col
}
