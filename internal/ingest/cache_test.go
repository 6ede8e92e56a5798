package ingest

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"costlens/internal/dataset"
)

func TestCachedLoaderMemoizes(t *testing.T) {
	c := NewCachedLoader(NewLoader(nil), nil)

	first, err := c.Load([]byte(sampleCSV), "usage.csv")
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	second, err := c.Load([]byte(sampleCSV), "usage.csv")
	require.NoError(t, err)
	assert.Same(t, first, second, "identical input returns the cached table")
}

func TestCachedLoaderKeyIncludesName(t *testing.T) {
	c := NewCachedLoader(NewLoader(nil), nil)

	_, err := c.Load([]byte(sampleCSV), "a.csv")
	require.NoError(t, err)
	_, err = c.Load([]byte(sampleCSV), "b.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
}

func TestCachedLoaderNeverCachesFailures(t *testing.T) {
	c := NewCachedLoader(NewLoader(nil), nil)

	table, err := c.Load([]byte("x"), "x.unknown")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	require.NotNil(t, table)
	assert.Equal(t, 0, c.Len())

	_, err = c.Load([]byte("not a workbook"), "x.xlsx")
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestCachedLoaderConcurrentLoads(t *testing.T) {
	c := NewCachedLoader(NewLoader(nil), nil)

	var wg sync.WaitGroup
	results := make([]*dataset.Table, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := c.Load([]byte(sampleCSV), "usage.csv")
			require.NoError(t, err)
			results[i] = table
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, c.Len())
	for _, r := range results {
		assert.Equal(t, 3, r.NumRows())
	}
}
