package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costlens/internal/dataset"
)

func buildTable(t *testing.T, header []string, rows ...[]string) *dataset.Table {
	t.Helper()
	b := dataset.NewBuilder(header)
	for _, r := range rows {
		b.AppendRow(r)
	}
	return b.Build()
}

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return &ts
}

func providers(t *testing.T, table *dataset.Table) []string {
	t.Helper()
	col, ok := table.Column(dataset.ColCloudProvider)
	require.True(t, ok)
	var out []string
	for i := 0; i < col.Len(); i++ {
		s, _ := col.StringAt(i)
		out = append(out, s)
	}
	return out
}

func filterFixture(t *testing.T) *dataset.Table {
	return buildTable(t,
		[]string{dataset.ColDate, dataset.ColCloudProvider, dataset.ColResourceType, dataset.ColClient, dataset.ColCostUSD},
		[]string{"2025-01-01", "AWS", "Compute", "Acme", "100"},
		[]string{"2025-01-02", "GCP", "Storage", "Acme", "30"},
		[]string{"2025-01-03", "AWS", "Storage", "Beta", "50"},
		[]string{"", "Azure", "Compute", "Beta", "20"},
	)
}

func TestFilterEmptyConstraintsSelectsAll(t *testing.T) {
	table := filterFixture(t)

	got := Filter(table, Constraints{})
	assert.Equal(t, table.NumRows(), got.NumRows())
	assert.Equal(t, providers(t, table), providers(t, got))
}

func TestFilterByProviderSet(t *testing.T) {
	table := filterFixture(t)

	got := Filter(table, Constraints{Providers: []string{"AWS"}})
	assert.Equal(t, []string{"AWS", "AWS"}, providers(t, got))

	got = Filter(table, Constraints{Providers: []string{"AWS", "GCP"}})
	assert.Equal(t, []string{"AWS", "GCP", "AWS"}, providers(t, got))

	got = Filter(table, Constraints{Providers: []string{"OnPrem"}})
	assert.Equal(t, 0, got.NumRows())
}

func TestFilterDateBoundsInclusive(t *testing.T) {
	table := filterFixture(t)

	got := Filter(table, Constraints{
		DateFrom: date(t, "2025-01-01"),
		DateTo:   date(t, "2025-01-02"),
	})
	assert.Equal(t, []string{"AWS", "GCP"}, providers(t, got))
}

func TestFilterNullDatesExcludedWhenDateActive(t *testing.T) {
	table := filterFixture(t)

	// Azure's row has a null date and must drop out under any date bound.
	got := Filter(table, Constraints{DateFrom: date(t, "2020-01-01")})
	assert.NotContains(t, providers(t, got), "Azure")

	// Without a date constraint the null-date row survives.
	got = Filter(table, Constraints{Providers: []string{"Azure"}})
	assert.Equal(t, []string{"Azure"}, providers(t, got))
}

func TestFilterClientCaseInsensitive(t *testing.T) {
	table := filterFixture(t)

	got := Filter(table, Constraints{Client: "acme"})
	assert.Equal(t, 2, got.NumRows())
}

func TestFilterConjunction(t *testing.T) {
	table := filterFixture(t)

	got := Filter(table, Constraints{
		Providers: []string{"AWS"},
		Resources: []string{"Storage"},
	})
	require.Equal(t, 1, got.NumRows())

	col, _ := got.Column(dataset.ColClient)
	s, _ := col.StringAt(0)
	assert.Equal(t, "Beta", s)
}

func TestFilterIdempotent(t *testing.T) {
	table := filterFixture(t)
	c := Constraints{
		DateFrom:  date(t, "2025-01-01"),
		Providers: []string{"AWS", "GCP"},
	}

	once := Filter(table, c)
	twice := Filter(once, c)
	assert.Equal(t, once.NumRows(), twice.NumRows())
	assert.Equal(t, once.Rows(), twice.Rows())
}

func TestFilterIgnoresMissingColumns(t *testing.T) {
	table := buildTable(t,
		[]string{dataset.ColCostUSD},
		[]string{"10"},
		[]string{"20"},
	)

	got := Filter(table, Constraints{
		Providers: []string{"AWS"},
		Client:    "Acme",
		DateFrom:  date(t, "2025-01-01"),
	})
	assert.Equal(t, 2, got.NumRows())
}

func TestConstraintsEmpty(t *testing.T) {
	assert.True(t, Constraints{}.Empty())
	assert.False(t, Constraints{Client: "x"}.Empty())
	assert.False(t, Constraints{DateFrom: date(t, "2025-01-01")}.Empty())
	assert.False(t, Constraints{Providers: []string{"AWS"}}.Empty())
}
