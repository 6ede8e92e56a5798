package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"costlens/internal/dataset"
)

// decodeJSON accepts both layouts the dashboard sees in the wild: an
// array of record objects, or a column-oriented object of arrays.
// Column order follows first appearance in the document.
func decodeJSON(data []byte) (*dataset.Table, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return dataset.Empty(), nil
	}
	switch trimmed[0] {
	case '[':
		return decodeJSONRecords(trimmed)
	case '{':
		return decodeJSONColumns(trimmed)
	default:
		return nil, fmt.Errorf("json: expected array or object")
	}
}

func decodeJSONRecords(data []byte) (*dataset.Table, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("json records: %w", err)
	}
	if len(records) == 0 {
		return dataset.Empty(), nil
	}

	// Column order is the order keys first appear across the records.
	var columns []string
	seen := map[string]bool{}
	for _, rec := range records {
		keys, err := objectKeys(rec)
		if err != nil {
			return nil, fmt.Errorf("json record: %w", err)
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	b := dataset.NewBuilder(columns)
	for _, rec := range records {
		var fields map[string]any
		if err := json.Unmarshal(rec, &fields); err != nil {
			return nil, fmt.Errorf("json record: %w", err)
		}
		cells := make([]string, len(columns))
		nulls := make([]bool, len(columns))
		for i, col := range columns {
			v, ok := fields[col]
			cells[i], nulls[i] = jsonCell(v, ok)
		}
		b.AppendNullableRow(cells, nulls)
	}
	return b.Build(), nil
}

func decodeJSONColumns(data []byte) (*dataset.Table, error) {
	columns, err := objectKeys(data)
	if err != nil {
		return nil, fmt.Errorf("json columns: %w", err)
	}
	var byName map[string][]any
	if err := json.Unmarshal(data, &byName); err != nil {
		return nil, fmt.Errorf("json columns: %w", err)
	}

	rows := 0
	for _, vals := range byName {
		if len(vals) > rows {
			rows = len(vals)
		}
	}

	b := dataset.NewBuilder(columns)
	for i := 0; i < rows; i++ {
		cells := make([]string, len(columns))
		nulls := make([]bool, len(columns))
		for j, col := range columns {
			vals := byName[col]
			if i < len(vals) {
				cells[j], nulls[j] = jsonCell(vals[i], true)
			} else {
				nulls[j] = true
			}
		}
		b.AppendNullableRow(cells, nulls)
	}
	return b.Build(), nil
}

// objectKeys walks a JSON object's tokens to recover key order, which
// plain map decoding loses.
func objectKeys(obj []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func jsonCell(v any, present bool) (string, bool) {
	if !present || v == nil {
		return "", true
	}
	switch val := v.(type) {
	case string:
		return val, false
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), false
	case bool:
		return strconv.FormatBool(val), false
	default:
		return fmt.Sprint(val), false
	}
}
