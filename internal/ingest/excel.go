package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"costlens/internal/dataset"
)

// decodeExcel reads the first sheet of a workbook: header row first,
// data rows after. Empty trailing cells excelize omits are padded by
// the builder.
func decodeExcel(data []byte) (*dataset.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataset.Empty(), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return dataset.Empty(), nil
	}

	b := dataset.NewBuilder(rows[0])
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		b.AppendRow(row)
	}
	return b.Build(), nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
