// Package ingest decodes uploaded cost/usage files into dataset tables.
// The decoder is selected by file-name suffix; decoding failures degrade
// per spec: unknown suffixes yield an empty table and a non-fatal error,
// malformed Date cells become nulls inside the table.
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"costlens/internal/dataset"
)

// ErrUnsupportedFormat marks a file whose suffix matches no known
// decoder. Callers treat it as a warning: the load still produces an
// (empty) table and the dashboard keeps rendering.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Loader turns raw bytes into tables.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "ingest"))}
}

// Load decodes data according to the suffix of nameHint
// (case-insensitive). Recognized: .csv, .csv.gz, .parquet, .xlsx, .xls,
// .json. An unrecognized suffix returns an empty table together with
// ErrUnsupportedFormat; decode failures of recognized formats return an
// empty table and the decode error.
func (l *Loader) Load(data []byte, nameHint string) (*dataset.Table, error) {
	name := strings.ToLower(strings.TrimSpace(nameHint))

	var (
		t   *dataset.Table
		err error
	)
	switch {
	case strings.HasSuffix(name, ".csv"), strings.HasSuffix(name, ".csv.gz"):
		t, err = decodeCSV(data)
	case strings.HasSuffix(name, ".parquet"):
		t, err = decodeParquet(data)
	case strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".xls"):
		t, err = decodeExcel(data)
	case strings.HasSuffix(name, ".json"):
		t, err = decodeJSON(data)
	default:
		l.logger.Warn("unrecognized file suffix",
			slog.String("name_hint", nameHint))
		return dataset.Empty(), fmt.Errorf("%w: %s", ErrUnsupportedFormat, nameHint)
	}
	if err != nil {
		l.logger.Error("decode failed",
			slog.String("name_hint", nameHint),
			slog.String("error", err.Error()))
		return dataset.Empty(), fmt.Errorf("decode %s: %w", nameHint, err)
	}

	l.logger.Info("dataset decoded",
		slog.String("name_hint", nameHint),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))
	return t, nil
}

// LoadFile reads and decodes a file from disk. Used for the bundled
// default dataset when no upload has been supplied.
func (l *Loader) LoadFile(path string) (*dataset.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dataset.Empty(), fmt.Errorf("read %s: %w", path, err)
	}
	return l.Load(data, filepath.Base(path))
}
