package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costlens/internal/dataset"
)

func TestGroupSum(t *testing.T) {
	table := buildTable(t,
		[]string{dataset.ColCloudProvider, dataset.ColCostUSD},
		[]string{"AWS", "100"},
		[]string{"GCP", "30"},
		[]string{"AWS", "50"},
	)

	totals, err := GroupSum(table, dataset.ColCloudProvider, dataset.ColCostUSD)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	// First-appearance order is preserved.
	assert.Equal(t, "AWS", totals[0].Key)
	assert.InDelta(t, 150.0, totals[0].Sum, 1e-9)
	assert.Equal(t, "GCP", totals[1].Key)
	assert.InDelta(t, 30.0, totals[1].Sum, 1e-9)
}

func TestGroupSumNullGroup(t *testing.T) {
	table := buildTable(t,
		[]string{dataset.ColCloudProvider, dataset.ColCostUSD},
		[]string{"AWS", "100"},
		[]string{"", "7"},
		[]string{"", "3"},
	)

	totals, err := GroupSum(table, dataset.ColCloudProvider, dataset.ColCostUSD)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.False(t, totals[0].Null)
	assert.True(t, totals[1].Null)
	assert.InDelta(t, 10.0, totals[1].Sum, 1e-9)
}

func TestGroupSumConservation(t *testing.T) {
	table := buildTable(t,
		[]string{dataset.ColCloudProvider, dataset.ColCostUSD},
		[]string{"AWS", "100.5"},
		[]string{"GCP", "30.25"},
		[]string{"", "19.25"},
		[]string{"Azure", ""},
	)

	totals, err := GroupSum(table, dataset.ColCloudProvider, dataset.ColCostUSD)
	require.NoError(t, err)

	var groupTotal float64
	for _, g := range totals {
		groupTotal += g.Sum
	}
	overall, err := Sum(table, dataset.ColCostUSD)
	require.NoError(t, err)
	assert.InDelta(t, overall, groupTotal, 1e-9)
}

func TestGroupSumMissingColumn(t *testing.T) {
	table := buildTable(t, []string{dataset.ColCostUSD}, []string{"10"})

	_, err := GroupSum(table, dataset.ColCloudProvider, dataset.ColCostUSD)
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = GroupSum(table, dataset.ColCostUSD, "Nope")
	assert.ErrorIs(t, err, ErrMissingColumn)

	// A non-numeric value column is as good as absent.
	table = buildTable(t,
		[]string{dataset.ColCloudProvider, dataset.ColCostUSD},
		[]string{"AWS", "free"},
	)
	_, err = GroupSum(table, dataset.ColCloudProvider, dataset.ColCostUSD)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestSumOverZeroRowsIsZero(t *testing.T) {
	table := buildTable(t, []string{dataset.ColCostUSD}, []string{"10"})
	empty := table.Select(nil)

	total, err := Sum(empty, dataset.ColCostUSD)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestMean(t *testing.T) {
	table := buildTable(t,
		[]string{dataset.ColUsageHours},
		[]string{"5"},
		[]string{"9"},
		[]string{""},
	)

	// Nulls are skipped from both numerator and denominator.
	mean, err := Mean(table, dataset.ColUsageHours)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, mean, 1e-9)
}

func TestMeanUndefinedIsNotZero(t *testing.T) {
	table := buildTable(t, []string{dataset.ColUsageHours}, []string{"5"})
	empty := table.Select(nil)

	_, err := Mean(empty, dataset.ColUsageHours)
	assert.ErrorIs(t, err, ErrUndefinedMean)

	// All-null column: same signal.
	allNull := buildTable(t,
		[]string{dataset.ColCostUSD, dataset.ColUsageHours},
		[]string{"1", ""},
	)
	_, err = Mean(allNull, dataset.ColUsageHours)
	assert.Error(t, err)
}

func TestTopGroups(t *testing.T) {
	table := buildTable(t,
		[]string{dataset.ColClient, dataset.ColCostUSD},
		[]string{"A", "10"},
		[]string{"B", "50"},
		[]string{"C", "30"},
		[]string{"D", "50"},
	)

	top, err := TopGroups(table, dataset.ColClient, dataset.ColCostUSD, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)

	// Descending by sum; the tie between B and D keeps appearance order.
	assert.Equal(t, "B", top[0].Key)
	assert.Equal(t, "D", top[1].Key)
	assert.Equal(t, "C", top[2].Key)
}

func TestNumericValues(t *testing.T) {
	table := buildTable(t,
		[]string{dataset.ColCostUSD},
		[]string{"1.5"},
		[]string{""},
		[]string{"2.5"},
	)

	values, err := NumericValues(table, dataset.ColCostUSD)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, values)

	_, err = NumericValues(table, "Nope")
	assert.ErrorIs(t, err, ErrMissingColumn)
}
