package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"costlens/internal/dataset"
)

// decodeParquet walks every row group of a flat parquet file. Nested
// schemas are not tabular and are rejected.
func decodeParquet(data []byte) (*dataset.Table, error) {
	pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	fields := pf.Schema().Fields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		if !f.Leaf() {
			return nil, fmt.Errorf("parquet: nested column %q not supported", f.Name())
		}
		columns[i] = f.Name()
	}

	b := dataset.NewBuilder(columns)
	buf := make([]parquet.Row, 128)
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				appendParquetRow(b, row, len(columns))
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("parquet rows: %w", err)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("parquet close: %w", err)
		}
	}
	return b.Build(), nil
}

func appendParquetRow(b *dataset.Builder, row parquet.Row, width int) {
	cells := make([]string, width)
	nulls := make([]bool, width)
	for i := range nulls {
		nulls[i] = true
	}
	for _, v := range row {
		ci := v.Column()
		if ci < 0 || ci >= width {
			continue
		}
		if v.IsNull() {
			continue
		}
		cells[ci] = parquetCell(v)
		nulls[ci] = false
	}
	b.AppendNullableRow(cells, nulls)
}

func parquetCell(v parquet.Value) string {
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'f', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
