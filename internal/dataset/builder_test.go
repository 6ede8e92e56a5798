package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderNumericInference(t *testing.T) {
	tests := []struct {
		name     string
		cells    [][]string
		wantKind Kind
	}{
		{
			name:     "all numeric",
			cells:    [][]string{{"1.5"}, {"2"}, {"300.25"}},
			wantKind: KindFloat,
		},
		{
			name:     "numeric with thousands separators",
			cells:    [][]string{{"1,200.50"}, {"3,000"}},
			wantKind: KindFloat,
		},
		{
			name:     "mixed stays string",
			cells:    [][]string{{"1.5"}, {"n/a"}},
			wantKind: KindString,
		},
		{
			name:     "numeric with null cells",
			cells:    [][]string{{"1.5"}, {""}, {"2.5"}},
			wantKind: KindFloat,
		},
		{
			name:     "all null stays string",
			cells:    [][]string{{""}, {""}},
			wantKind: KindString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder([]string{"Value"})
			for _, row := range tt.cells {
				b.AppendRow(row)
			}
			table := b.Build()

			col, ok := table.Column("Value")
			require.True(t, ok)
			assert.Equal(t, tt.wantKind, col.Kind)
		})
	}
}

func TestBuilderDateCoercion(t *testing.T) {
	b := NewBuilder([]string{ColDate})
	b.AppendRow([]string{"2025-01-02"})
	b.AppendRow([]string{"2025/03/04"})
	b.AppendRow([]string{"not-a-date"})
	b.AppendRow([]string{""})
	table := b.Build()

	col, ok := table.Column(ColDate)
	require.True(t, ok)
	assert.Equal(t, KindTime, col.Kind)

	ts, present := col.Time(0)
	require.True(t, present)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), ts)

	ts, present = col.Time(1)
	require.True(t, present)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), ts)

	// Malformed cells degrade to nulls, never fail the load.
	assert.True(t, col.IsNull(2))
	assert.True(t, col.IsNull(3))
}

func TestBuilderDerivesCostPerHour(t *testing.T) {
	b := NewBuilder([]string{ColCostUSD, ColUsageHours})
	b.AppendRow([]string{"100", "10"})
	b.AppendRow([]string{"50", "0"})
	b.AppendRow([]string{"", "5"})
	table := b.Build()

	require.True(t, table.Has(ColCostPerHour))
	col, _ := table.Column(ColCostPerHour)

	v, ok := col.Float(0)
	require.True(t, ok)
	assert.InDelta(t, 10.0, v, 1e-9)

	// Zero usage leaves the ratio undefined, not infinite.
	assert.True(t, col.IsNull(1))
	// Null cost propagates.
	assert.True(t, col.IsNull(2))
}

func TestBuilderNoCostPerHourWithoutInputs(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		row     []string
	}{
		{"missing usage", []string{ColCostUSD}, []string{"100"}},
		{"missing cost", []string{ColUsageHours}, []string{"10"}},
		{"non-numeric cost", []string{ColCostUSD, ColUsageHours}, []string{"free", "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(tt.columns)
			b.AppendRow(tt.row)
			assert.False(t, b.Build().Has(ColCostPerHour))
		})
	}
}

func TestBuilderRowShapes(t *testing.T) {
	b := NewBuilder([]string{"A", "B", "C"})
	b.AppendRow([]string{"x"})                     // short: padded with nulls
	b.AppendRow([]string{"y", "z", "w", "extra"}) // long: truncated
	table := b.Build()

	require.Equal(t, 2, table.NumRows())
	require.Equal(t, 3, table.NumCols())

	colB, _ := table.Column("B")
	assert.True(t, colB.IsNull(0))
	s, ok := colB.StringAt(1)
	require.True(t, ok)
	assert.Equal(t, "z", s)
}

func TestBuilderEmpty(t *testing.T) {
	assert.Equal(t, 0, NewBuilder(nil).Build().NumRows())

	b := NewBuilder([]string{"A"})
	table := b.Build()
	assert.Equal(t, 0, table.NumRows())
	assert.Equal(t, 1, table.NumCols())
}
