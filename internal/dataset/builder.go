package dataset

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when coercing the Date column. The
// first two cover the bundled dataset and typical billing exports.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// Builder accumulates raw string cells and produces a typed Table.
// Decoders append rows as strings; Build infers numeric columns, coerces
// the Date column and derives CostPerHour. Empty cells count as nulls.
type Builder struct {
	names []string
	cells [][]string
	nulls [][]bool
}

// NewBuilder creates a builder for the given column names.
func NewBuilder(columns []string) *Builder {
	b := &Builder{
		names: append([]string(nil), columns...),
		cells: make([][]string, len(columns)),
		nulls: make([][]bool, len(columns)),
	}
	return b
}

// AppendRow adds one row of raw cells. Short rows are padded with nulls,
// long rows are truncated to the declared columns.
func (b *Builder) AppendRow(values []string) {
	for i := range b.names {
		if i < len(values) {
			v := strings.TrimSpace(values[i])
			b.cells[i] = append(b.cells[i], v)
			b.nulls[i] = append(b.nulls[i], v == "")
		} else {
			b.cells[i] = append(b.cells[i], "")
			b.nulls[i] = append(b.nulls[i], true)
		}
	}
}

// AppendNullableRow adds one row where cells may be explicitly null
// regardless of content (JSON null, parquet null).
func (b *Builder) AppendNullableRow(values []string, null []bool) {
	for i := range b.names {
		v := ""
		isNull := true
		if i < len(values) {
			v = strings.TrimSpace(values[i])
			isNull = null[i] || v == ""
		}
		b.cells[i] = append(b.cells[i], v)
		b.nulls[i] = append(b.nulls[i], isNull)
	}
}

// Build assembles the final table. Construction is the only moment a
// table changes shape: numeric inference, Date coercion and the derived
// CostPerHour column all happen here, once.
func (b *Builder) Build() *Table {
	if len(b.names) == 0 {
		return Empty()
	}
	cols := make([]*Column, 0, len(b.names))
	for i, name := range b.names {
		cols = append(cols, buildColumn(name, b.cells[i], b.nulls[i]))
	}
	t := fromColumns(cols)
	return deriveCostPerHour(t)
}

func buildColumn(name string, raw []string, nulls []bool) *Column {
	if name == ColDate {
		return buildTimeColumn(name, raw, nulls)
	}
	if floats, ok := tryFloats(raw, nulls); ok {
		return &Column{Name: name, Kind: KindFloat, floats: floats, nulls: append([]bool(nil), nulls...)}
	}
	return &Column{Name: name, Kind: KindString, strs: append([]string(nil), raw...), nulls: append([]bool(nil), nulls...)}
}

// buildTimeColumn coerces the Date column. Cells that fail every layout
// become nulls rather than failing the load.
func buildTimeColumn(name string, raw []string, nulls []bool) *Column {
	c := &Column{
		Name:  name,
		Kind:  KindTime,
		times: make([]time.Time, len(raw)),
		nulls: make([]bool, len(raw)),
	}
	for i, v := range raw {
		if nulls[i] {
			c.nulls[i] = true
			continue
		}
		ts, ok := parseDate(v)
		if !ok {
			c.nulls[i] = true
			continue
		}
		c.times[i] = ts
	}
	return c
}

func parseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// tryFloats reports whether every non-null cell parses as a number. A
// column of nothing but nulls stays a string column.
func tryFloats(raw []string, nulls []bool) ([]float64, bool) {
	floats := make([]float64, len(raw))
	seen := false
	for i, v := range raw {
		if nulls[i] {
			continue
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil {
			return nil, false
		}
		floats[i] = f
		seen = true
	}
	return floats, seen
}

// deriveCostPerHour appends the CostPerHour column when both inputs are
// present and numeric. The ratio is undefined (null) when UsageHours is
// zero or either input is null.
func deriveCostPerHour(t *Table) *Table {
	if t.Has(ColCostPerHour) {
		return t
	}
	cost, ok := t.Column(ColCostUSD)
	if !ok || cost.Kind != KindFloat {
		return t
	}
	usage, ok := t.Column(ColUsageHours)
	if !ok || usage.Kind != KindFloat {
		return t
	}
	derived := &Column{
		Name:   ColCostPerHour,
		Kind:   KindFloat,
		floats: make([]float64, t.rows),
		nulls:  make([]bool, t.rows),
	}
	for i := 0; i < t.rows; i++ {
		c, cok := cost.Float(i)
		u, uok := usage.Float(i)
		if !cok || !uok || u == 0 {
			derived.nulls[i] = true
			continue
		}
		derived.floats[i] = c / u
	}
	cols := append(append([]*Column(nil), t.cols...), derived)
	return fromColumns(cols)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
