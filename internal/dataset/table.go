// Package dataset implements the column-oriented record table that every
// dashboard computation runs against. Tables are immutable once built:
// filtering and projection always produce fresh copies.
package dataset

import (
	"time"
)

// Well-known column names recognized by the dashboard. None of them is
// required to exist; computations check capabilities before running.
const (
	ColDate          = "Date"
	ColCloudProvider = "CloudProvider"
	ColResourceType  = "ResourceType"
	ColRegion        = "Region"
	ColCostCenter    = "CostCenter"
	ColClient        = "Client"
	ColCostUSD       = "CostUSD"
	ColUsageHours    = "UsageHours"
	ColCostPerHour   = "CostPerHour"
)

// Kind identifies the semantic type of a column.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindTime
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	default:
		return "string"
	}
}

// Column is a homogeneous sequence of values with per-cell null markers.
type Column struct {
	Name string
	Kind Kind

	strs   []string
	floats []float64
	times  []time.Time
	nulls  []bool
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	return len(c.nulls)
}

// IsNull reports whether the cell at index i holds no value.
func (c *Column) IsNull(i int) bool {
	return c.nulls[i]
}

// Float returns the numeric value at index i. The second return is false
// for null cells and for non-numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	if c.Kind != KindFloat || c.nulls[i] {
		return 0, false
	}
	return c.floats[i], true
}

// Time returns the calendar value at index i. The second return is false
// for null cells and for non-time columns.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.Kind != KindTime || c.nulls[i] {
		return time.Time{}, false
	}
	return c.times[i], true
}

// StringAt returns the cell at index i rendered as a string, and false
// for null cells.
func (c *Column) StringAt(i int) (string, bool) {
	if c.nulls[i] {
		return "", false
	}
	switch c.Kind {
	case KindFloat:
		return formatFloat(c.floats[i]), true
	case KindTime:
		return c.times[i].Format("2006-01-02"), true
	default:
		return c.strs[i], true
	}
}

// Value returns the cell at index i as a JSON-friendly value, nil for
// null cells.
func (c *Column) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	switch c.Kind {
	case KindFloat:
		return c.floats[i]
	case KindTime:
		return c.times[i].Format("2006-01-02")
	default:
		return c.strs[i]
	}
}

// slice returns a copy of the column restricted to the given row indices.
func (c *Column) slice(rows []int) *Column {
	out := &Column{
		Name:  c.Name,
		Kind:  c.Kind,
		nulls: make([]bool, len(rows)),
	}
	switch c.Kind {
	case KindFloat:
		out.floats = make([]float64, len(rows))
	case KindTime:
		out.times = make([]time.Time, len(rows))
	default:
		out.strs = make([]string, len(rows))
	}
	for j, i := range rows {
		out.nulls[j] = c.nulls[i]
		switch c.Kind {
		case KindFloat:
			out.floats[j] = c.floats[i]
		case KindTime:
			out.times[j] = c.times[i]
		default:
			out.strs[j] = c.strs[i]
		}
	}
	return out
}

// Table is an ordered collection of equally sized columns.
type Table struct {
	cols   []*Column
	byName map[string]*Column
	rows   int
}

// Empty returns a table with zero rows and zero columns.
func Empty() *Table {
	return &Table{byName: map[string]*Column{}}
}

// fromColumns assembles a table from prepared columns. All columns must
// already have equal length.
func fromColumns(cols []*Column) *Table {
	t := &Table{cols: cols, byName: make(map[string]*Column, len(cols))}
	for _, c := range cols {
		t.byName[c.Name] = c
		t.rows = c.Len()
	}
	return t
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return t.rows
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// ColumnNames returns the column names in their original order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the table carries the named column. This is the
// capability check that gates every computation referencing a column.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// HasAll reports whether every named column is present.
func (t *Table) HasAll(names ...string) bool {
	for _, n := range names {
		if !t.Has(n) {
			return false
		}
	}
	return true
}

// Column returns the named column and whether it exists.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Select returns a new table containing the given rows, in the given
// order. The receiver is left untouched.
func (t *Table) Select(rows []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.slice(rows)
	}
	return fromColumns(cols)
}

// Project returns a new table restricted to the named columns, skipping
// names the table does not carry.
func (t *Table) Project(names ...string) *Table {
	var cols []*Column
	for _, n := range names {
		if c, ok := t.byName[n]; ok {
			cols = append(cols, c.slice(allRows(c.Len())))
		}
	}
	if cols == nil {
		return Empty()
	}
	return fromColumns(cols)
}

// Head returns a copy of the first n rows (fewer when the table is
// smaller).
func (t *Table) Head(n int) *Table {
	if n > t.rows {
		n = t.rows
	}
	return t.Select(allRows(n))
}

// Rows renders every row as a slice of JSON-friendly values, in column
// order. Null cells render as nil.
func (t *Table) Rows() [][]any {
	out := make([][]any, t.rows)
	for i := 0; i < t.rows; i++ {
		row := make([]any, len(t.cols))
		for j, c := range t.cols {
			row[j] = c.Value(i)
		}
		out[i] = row
	}
	return out
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
