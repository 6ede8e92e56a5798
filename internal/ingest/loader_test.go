package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"costlens/internal/dataset"
)

const sampleCSV = `Date,CloudProvider,CostUSD,UsageHours
2025-01-02,AWS,100,10
2025-01-03,GCP,50,
bogus,Azure,25,5
`

func TestLoadCSV(t *testing.T) {
	l := NewLoader(nil)

	table, err := l.Load([]byte(sampleCSV), "usage.csv")
	require.NoError(t, err)

	assert.Equal(t, 3, table.NumRows())
	assert.True(t, table.HasAll(
		dataset.ColDate,
		dataset.ColCloudProvider,
		dataset.ColCostUSD,
		dataset.ColUsageHours,
		dataset.ColCostPerHour,
	))

	dateCol, _ := table.Column(dataset.ColDate)
	assert.Equal(t, dataset.KindTime, dateCol.Kind)
	assert.True(t, dateCol.IsNull(2), "unparseable date degrades to null")

	usageCol, _ := table.Column(dataset.ColUsageHours)
	assert.True(t, usageCol.IsNull(1))
}

func TestLoadCSVGzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	l := NewLoader(nil)

	// Compression is detected from content, so both suffixes work.
	for _, name := range []string{"usage.csv.gz", "usage.csv"} {
		table, err := l.Load(buf.Bytes(), name)
		require.NoError(t, err, name)
		assert.Equal(t, 3, table.NumRows(), name)
	}
}

func TestLoadCSVEmpty(t *testing.T) {
	l := NewLoader(nil)

	table, err := l.Load(nil, "empty.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, table.NumRows())
}

func TestLoadJSONRecords(t *testing.T) {
	doc := `[
		{"Date": "2025-01-02", "CloudProvider": "AWS", "CostUSD": 100, "UsageHours": 10},
		{"Date": "2025-01-03", "CloudProvider": "GCP", "CostUSD": 50, "UsageHours": null}
	]`

	l := NewLoader(nil)
	table, err := l.Load([]byte(doc), "usage.json")
	require.NoError(t, err)

	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, []string{
		dataset.ColDate, dataset.ColCloudProvider, dataset.ColCostUSD, dataset.ColUsageHours, dataset.ColCostPerHour,
	}, table.ColumnNames())

	costCol, _ := table.Column(dataset.ColCostUSD)
	assert.Equal(t, dataset.KindFloat, costCol.Kind)

	usageCol, _ := table.Column(dataset.ColUsageHours)
	assert.True(t, usageCol.IsNull(1))
}

func TestLoadJSONColumns(t *testing.T) {
	doc := `{"CloudProvider": ["AWS", "GCP"], "CostUSD": [100, 50]}`

	l := NewLoader(nil)
	table, err := l.Load([]byte(doc), "usage.json")
	require.NoError(t, err)

	assert.Equal(t, 2, table.NumRows())
	assert.Equal(t, []string{dataset.ColCloudProvider, dataset.ColCostUSD}, table.ColumnNames())
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Date", "CloudProvider", "CostUSD", "UsageHours"},
		{"2025-01-02", "AWS", 100, 10},
		{"2025-01-03", "GCP", 50, 2},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	l := NewLoader(nil)
	table, err := l.Load(buf.Bytes(), "usage.xlsx")
	require.NoError(t, err)

	assert.Equal(t, 2, table.NumRows())
	assert.True(t, table.Has(dataset.ColCostPerHour))

	costCol, _ := table.Column(dataset.ColCostUSD)
	v, ok := costCol.Float(0)
	require.True(t, ok)
	assert.InDelta(t, 100.0, v, 1e-9)
}

func TestLoadParquet(t *testing.T) {
	type usageRow struct {
		Date          string  `parquet:"Date"`
		CloudProvider string  `parquet:"CloudProvider"`
		CostUSD       float64 `parquet:"CostUSD"`
		UsageHours    float64 `parquet:"UsageHours"`
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[usageRow](&buf)
	_, err := w.Write([]usageRow{
		{Date: "2025-01-02", CloudProvider: "AWS", CostUSD: 100, UsageHours: 10},
		{Date: "2025-01-03", CloudProvider: "GCP", CostUSD: 50, UsageHours: 2},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	l := NewLoader(nil)
	table, err := l.Load(buf.Bytes(), "usage.parquet")
	require.NoError(t, err)

	assert.Equal(t, 2, table.NumRows())
	assert.True(t, table.HasAll(dataset.ColDate, dataset.ColCloudProvider, dataset.ColCostUSD, dataset.ColUsageHours))

	dateCol, _ := table.Column(dataset.ColDate)
	assert.Equal(t, dataset.KindTime, dateCol.Kind)

	costCol, _ := table.Column(dataset.ColCostUSD)
	v, ok := costCol.Float(1)
	require.True(t, ok)
	assert.InDelta(t, 50.0, v, 1e-9)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	l := NewLoader(nil)

	table, err := l.Load([]byte("whatever"), "usage.pdf")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	// The table is still usable: empty, not nil.
	require.NotNil(t, table)
	assert.Equal(t, 0, table.NumRows())
}

func TestLoadDecodeFailure(t *testing.T) {
	l := NewLoader(nil)

	table, err := l.Load([]byte("not a workbook"), "usage.xlsx")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, 0, table.NumRows())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	l := NewLoader(nil)
	table, err := l.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.NumRows())

	_, err = l.LoadFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
