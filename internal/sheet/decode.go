package sheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

var (
	ErrNotArray  = errors.New("response is not a JSON array")
	ErrNotObject = errors.New("row is not a JSON object")
)

// DecodeTable reads a JSON array of flat objects. Key order inside each
// object is preserved. reserved names the metadata columns the source
// declares.
func DecodeTable(r io.Reader, reserved []string) (Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	t := Table{Reserved: slices.Clone(reserved), Rows: []Row{}}

	tok, err := dec.Token()
	if err != nil {
		return Table{}, fmt.Errorf("reading table: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return Table{}, ErrNotArray
	}

	for i := 0; dec.More(); i++ {
		row, err := decodeRow(dec)
		if err != nil {
			return Table{}, fmt.Errorf("row %d: %w", i, err)
		}
		if i == 0 {
			t.Columns = slices.Clone(row.Columns)
		}
		t.Rows = append(t.Rows, row)
	}

	if _, err := dec.Token(); err != nil {
		return Table{}, fmt.Errorf("reading table end: %w", err)
	}
	return t, nil
}

func decodeRow(dec *json.Decoder) (Row, error) {
	tok, err := dec.Token()
	if err != nil {
		return Row{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Row{}, ErrNotObject
	}

	var row Row
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Row{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Row{}, fmt.Errorf("unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Row{}, fmt.Errorf("column %q: %w", key, err)
		}
		text, err := cellText(raw)
		if err != nil {
			return Row{}, fmt.Errorf("column %q: %w", key, err)
		}
		// Duplicate keys: last value wins, first position kept.
		if i := slices.Index(row.Columns, key); i >= 0 {
			row.Values[i] = NewCell(text)
			continue
		}
		row.Columns = append(row.Columns, key)
		row.Values = append(row.Values, NewCell(text))
	}

	if _, err := dec.Token(); err != nil {
		return Row{}, err
	}
	return row, nil
}

// cellText renders a JSON value as the text a spreadsheet would show:
// strings unquoted, null empty, everything else as its JSON literal.
func cellText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return "", nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
}
