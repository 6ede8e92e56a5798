package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"costlens/internal/dataset"
)

// gzipMagic is the two-byte gzip header. Compression is detected from
// content, not just the .gz suffix, so a gzipped file with a plain .csv
// name still decodes.
var gzipMagic = []byte{0x1f, 0x8b}

func decodeCSV(data []byte) (*dataset.Table, error) {
	var reader io.Reader = bytes.NewReader(data)
	if bytes.HasPrefix(data, gzipMagic) {
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1 // tolerate ragged rows, the builder pads them
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return dataset.Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}

	b := dataset.NewBuilder(header)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv row: %w", err)
		}
		b.AppendRow(record)
	}
	return b.Build(), nil
}
